package usecase

import (
	"flight-queue-service/internal/domain/entity"
	"flight-queue-service/pkg/sequence"
)

// PrioritizeFlights builds a queue from flights in three passes:
//
//  1. emergency flights that are not delayed, each pushed to the front
//  2. regular flights that are not delayed, appended
//  3. delayed flights, emergency or not, appended
//
// Passes 2 and 3 keep the input order. Pass 1 pushes to the front, so the
// last emergency in the input ends up at the head, the same place a newly
// added emergency goes.
func PrioritizeFlights(flights []*entity.Flight) *sequence.Sequence[*entity.Flight] {
	queue := sequence.New[*entity.Flight]()

	for _, f := range flights {
		if f.Emergency && !f.IsDelayed() {
			queue.PushFront(f)
		}
	}
	for _, f := range flights {
		if !f.Emergency && !f.IsDelayed() {
			queue.PushBack(f)
		}
	}
	for _, f := range flights {
		if f.IsDelayed() {
			queue.PushBack(f)
		}
	}

	return queue
}
