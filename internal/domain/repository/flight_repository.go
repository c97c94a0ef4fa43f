package repository

import (
	"context"
	"errors"

	"flight-queue-service/internal/domain/entity"
)

var (
	// ErrNotFound is returned by lookups that match no record
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write violates a uniqueness constraint
	ErrConflict = errors.New("record already exists")
)

// FlightRepository defines the interface for the authoritative flight store
type FlightRepository interface {
	Create(ctx context.Context, flight *entity.Flight) error
	Update(ctx context.Context, flight *entity.Flight) error
	FindByID(ctx context.Context, id uint) (*entity.Flight, error)
	FindByNumber(ctx context.Context, flightNumber string) (*entity.Flight, error)
	// ListBySchedule returns every flight ordered by scheduled time
	ListBySchedule(ctx context.Context) ([]*entity.Flight, error)
}

// FlightHistoryRepository defines the interface for the status audit trail
type FlightHistoryRepository interface {
	Append(ctx context.Context, entry *entity.FlightHistory) error
	ListByFlight(ctx context.Context, flightID uint) ([]*entity.FlightHistory, error)
}
