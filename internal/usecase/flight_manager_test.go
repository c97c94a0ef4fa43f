package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"flight-queue-service/internal/domain/entity"
	"flight-queue-service/internal/domain/repository"
	memrepo "flight-queue-service/internal/interface/repository"
	"flight-queue-service/internal/usecase"
	"flight-queue-service/pkg/logger"
	"flight-queue-service/pkg/metrics"
	"flight-queue-service/pkg/sequence"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	manager *usecase.FlightManager
	flights *memrepo.MemoryFlightRepository
	history *memrepo.MemoryFlightHistoryRepository
	metrics *metrics.Metrics
}

func newFixture(t *testing.T, flightRepo repository.FlightRepository) *fixture {
	t.Helper()

	mem := memrepo.NewMemoryFlightRepository()
	if flightRepo == nil {
		flightRepo = mem
	}
	history := memrepo.NewMemoryFlightHistoryRepository()
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	validator := usecase.NewFlightValidator(30*time.Minute, func() time.Time { return now })

	return &fixture{
		manager: usecase.NewFlightManager(flightRepo, history, validator, m, logger.NewNop(), 3),
		flights: mem,
		history: history,
		metrics: m,
	}
}

func newFlight(number string, hours int) *entity.Flight {
	return &entity.Flight{
		FlightNumber: number,
		Airline:      "Iberia",
		Origin:       "MAD",
		Destination:  "BCN",
		ScheduledAt:  now.Add(time.Duration(hours) * time.Hour),
	}
}

func flightNumbers(flights []entity.Flight) []string {
	out := make([]string, 0, len(flights))
	for _, f := range flights {
		out = append(out, f.FlightNumber)
	}
	return out
}

func queueNumbers(t *testing.T, m *usecase.FlightManager) []string {
	t.Helper()
	return flightNumbers(m.List(0, 0))
}

func TestAddFlightEmergencyJumpsToFront(t *testing.T) {
	f := newFixture(t, nil)
	f.manager = usecase.NewFlightManager(f.flights, f.history,
		usecase.NewFlightValidator(30*time.Minute, func() time.Time { return now }),
		f.metrics, logger.NewNop(), 10)
	ctx := context.Background()

	for i, emergency := range []bool{false, true, false} {
		fl := newFlight([]string{"IB100", "IB200", "IB300"}[i], i+1)
		fl.Emergency = emergency
		_, err := f.manager.AddFlight(ctx, fl)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"IB200", "IB100", "IB300"}, queueNumbers(t, f.manager))
	first, ok := f.manager.First()
	require.True(t, ok)
	assert.True(t, first.Emergency)
	last, ok := f.manager.Last()
	require.True(t, ok)
	assert.Equal(t, "IB300", last.FlightNumber)
}

func TestAddFlightDefaultsAndPersists(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	added, err := f.manager.AddFlight(ctx, newFlight("IB100", 1))
	require.NoError(t, err)
	assert.NotZero(t, added.ID)
	assert.Equal(t, entity.StatusScheduled, added.Status)

	stored, err := f.manager.GetByID(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, "IB100", stored.FlightNumber)

	byNumber, err := f.manager.FindByNumber(ctx, "IB100")
	require.NoError(t, err)
	assert.Equal(t, added.ID, byNumber.ID)

	history, err := f.manager.History(ctx, added.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entity.StatusScheduled, history[0].NewStatus)
	assert.Empty(t, history[0].PreviousStatus)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.QueueLength))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Operations.WithLabelValues("add")))
}

func TestAddFlightRejectsDuplicateNumber(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.manager.AddFlight(ctx, newFlight("IB100", 1))
	require.NoError(t, err)

	_, err = f.manager.AddFlight(ctx, newFlight("IB100", 2))
	assert.ErrorIs(t, err, usecase.ErrDuplicateFlight)
	assert.Equal(t, 1, f.manager.Count())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ErrorsCount.WithLabelValues("add")))
}

func TestAddFlightRejectsInvalidFlight(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	bad := newFlight("XX1", 1)
	bad.Destination = "MAD"

	_, err := f.manager.AddFlight(ctx, bad)
	require.ErrorIs(t, err, usecase.ErrInvalidFlight)

	var verr *usecase.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Problems(), 2)
	assert.Equal(t, 0, f.manager.Count())

	_, err = f.flights.FindByNumber(ctx, "XX1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestInsertFlightAt(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for i, n := range []string{"IB100", "IB200", "IB300"} {
		_, err := f.manager.AddFlight(ctx, newFlight(n, i+1))
		require.NoError(t, err)
	}

	_, err := f.manager.InsertFlightAt(ctx, newFlight("IB150", 4), 1)
	require.NoError(t, err)

	flights := f.manager.List(0, 10)
	assert.Len(t, flights, 3, "page limit caps the listing")
	assert.Equal(t, []string{"IB100", "IB150", "IB200"}, flightNumbers(flights))
	assert.Equal(t, []string{"IB300"}, flightNumbers(f.manager.List(3, 0)))
	assert.Equal(t, 4, f.manager.Count())
}

func TestInsertFlightAtEndMatchesAdd(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.manager.AddFlight(ctx, newFlight("IB100", 1))
	require.NoError(t, err)
	_, err = f.manager.InsertFlightAt(ctx, newFlight("IB200", 2), 1)
	require.NoError(t, err)

	last, ok := f.manager.Last()
	require.True(t, ok)
	assert.Equal(t, "IB200", last.FlightNumber)
}

func TestInsertFlightAtOutOfRangeWritesNothing(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for _, pos := range []int{-1, 1, 5} {
		_, err := f.manager.InsertFlightAt(ctx, newFlight("IB100", 1), pos)
		require.ErrorIs(t, err, sequence.ErrOutOfRange, "position %d", pos)
	}

	_, err := f.flights.FindByNumber(ctx, "IB100")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, 0, f.manager.Count())
}

func TestRemoveAtCancelsFlight(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	var ids []uint
	for i, n := range []string{"IB100", "IB200", "IB300"} {
		added, err := f.manager.AddFlight(ctx, newFlight(n, i+1))
		require.NoError(t, err)
		ids = append(ids, added.ID)
	}

	removed, err := f.manager.RemoveAt(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "IB200", removed.FlightNumber)
	assert.Equal(t, entity.StatusCancelled, removed.Status)
	assert.Equal(t, []string{"IB100", "IB300"}, queueNumbers(t, f.manager))

	stored, err := f.manager.GetByID(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, stored.Status)

	history, err := f.manager.History(ctx, ids[1])
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, entity.StatusScheduled, history[1].PreviousStatus)
	assert.Equal(t, entity.StatusCancelled, history[1].NewStatus)

	// A rebuild must not bring the cancelled flight back
	require.NoError(t, f.manager.Load(ctx))
	assert.Equal(t, []string{"IB100", "IB300"}, queueNumbers(t, f.manager))
}

func TestRemoveAtOnEmptyQueue(t *testing.T) {
	f := newFixture(t, nil)

	for _, pos := range []int{0, -1, 1} {
		_, err := f.manager.RemoveAt(context.Background(), pos)
		assert.ErrorIs(t, err, sequence.ErrOutOfRange)
	}
}

func TestRemoveByID(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	a, err := f.manager.AddFlight(ctx, newFlight("IB100", 1))
	require.NoError(t, err)
	_, err = f.manager.AddFlight(ctx, newFlight("IB200", 2))
	require.NoError(t, err)

	removed, err := f.manager.RemoveByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, removed.ID)
	assert.Equal(t, []string{"IB200"}, queueNumbers(t, f.manager))

	_, err = f.manager.RemoveByID(ctx, a.ID)
	assert.ErrorIs(t, err, usecase.ErrNotQueued)
}

type failingUpdateRepo struct {
	*memrepo.MemoryFlightRepository
}

func (r failingUpdateRepo) Update(ctx context.Context, flight *entity.Flight) error {
	return errors.New("connection reset")
}

func TestRemoveAtRestoresQueueWhenStoreFails(t *testing.T) {
	mem := memrepo.NewMemoryFlightRepository()
	f := newFixture(t, failingUpdateRepo{mem})
	ctx := context.Background()

	for i, n := range []string{"IB100", "IB200", "IB300"} {
		_, err := f.manager.AddFlight(ctx, newFlight(n, i+1))
		require.NoError(t, err)
	}

	_, err := f.manager.RemoveAt(ctx, 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, sequence.ErrOutOfRange)
	assert.Equal(t, []string{"IB100", "IB200", "IB300"}, queueNumbers(t, f.manager))

	stored, err := mem.FindByNumber(ctx, "IB200")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusScheduled, stored.Status)
}

func TestLoadAppliesPriorityPolicy(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	seed := []struct {
		number    string
		status    entity.FlightStatus
		emergency bool
	}{
		{"IB100", entity.StatusScheduled, false},
		{"IB200", entity.StatusDelayed, false},
		{"IB300", entity.StatusScheduled, true},
		{"IB400", entity.StatusDelayed, true},
		{"IB500", entity.StatusBoarding, false},
	}
	for i, s := range seed {
		fl := newFlight(s.number, i+1)
		fl.Status = s.status
		fl.Emergency = s.emergency
		require.NoError(t, f.flights.Create(ctx, fl))
	}

	require.NoError(t, f.manager.Load(ctx))

	all := flightNumbers(f.manager.List(0, 3))
	all = append(all, flightNumbers(f.manager.List(3, 3))...)
	assert.Equal(t, []string{"IB300", "IB100", "IB500", "IB200", "IB400"}, all)
	assert.Equal(t, 5.0, testutil.ToFloat64(f.metrics.QueueLength))
}

func TestUpdateFlightRebuildsQueue(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	var ids []uint
	for i, n := range []string{"IB100", "IB200", "IB300"} {
		added, err := f.manager.AddFlight(ctx, newFlight(n, i+1))
		require.NoError(t, err)
		ids = append(ids, added.ID)
	}

	delayed := entity.StatusDelayed
	updated, err := f.manager.UpdateFlight(ctx, ids[0], entity.FlightUpdate{Status: &delayed})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDelayed, updated.Status)
	assert.Equal(t, []string{"IB200", "IB300", "IB100"}, queueNumbers(t, f.manager))

	emergency := true
	_, err = f.manager.UpdateFlight(ctx, ids[2], entity.FlightUpdate{Emergency: &emergency})
	require.NoError(t, err)
	assert.Equal(t, []string{"IB300", "IB200", "IB100"}, queueNumbers(t, f.manager))

	history, err := f.manager.History(ctx, ids[0])
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, entity.StatusDelayed, history[1].NewStatus)

	history, err = f.manager.History(ctx, ids[2])
	require.NoError(t, err)
	assert.Len(t, history, 1, "no status change, no history entry")
}

func TestUpdateFlightValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	a, err := f.manager.AddFlight(ctx, newFlight("IB100", 1))
	require.NoError(t, err)
	_, err = f.manager.AddFlight(ctx, newFlight("IB200", 2))
	require.NoError(t, err)

	taken := "IB200"
	_, err = f.manager.UpdateFlight(ctx, a.ID, entity.FlightUpdate{FlightNumber: &taken})
	assert.ErrorIs(t, err, usecase.ErrDuplicateFlight)

	badStatus := entity.FlightStatus("landed")
	_, err = f.manager.UpdateFlight(ctx, a.ID, entity.FlightUpdate{Status: &badStatus})
	assert.ErrorIs(t, err, usecase.ErrInvalidFlight)

	past := now.Add(-3 * time.Hour)
	_, err = f.manager.UpdateFlight(ctx, a.ID, entity.FlightUpdate{ScheduledAt: &past})
	assert.ErrorIs(t, err, usecase.ErrInvalidFlight)

	_, err = f.manager.UpdateFlight(ctx, 999, entity.FlightUpdate{Status: &badStatus})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFilters(t *testing.T) {
	f := newFixture(t, nil)
	f.manager = usecase.NewFlightManager(f.flights, f.history,
		usecase.NewFlightValidator(30*time.Minute, func() time.Time { return now }),
		f.metrics, logger.NewNop(), 10)
	ctx := context.Background()

	seed := []struct {
		number, airline, origin, destination string
		status                               entity.FlightStatus
	}{
		{"IB100", "Iberia", "MAD", "BCN", entity.StatusScheduled},
		{"VY200", "Vueling", "BCN", "MAD", entity.StatusBoarding},
		{"IB300", "Iberia", "MAD", "LHR", entity.StatusBoarding},
		{"UX400", "Air Europa", "PMI", "BCN", entity.StatusDelayed},
	}
	for i, s := range seed {
		fl := newFlight(s.number, i+1)
		fl.Airline, fl.Origin, fl.Destination, fl.Status = s.airline, s.origin, s.destination, s.status
		_, err := f.manager.AddFlight(ctx, fl)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"VY200", "IB300"}, flightNumbers(f.manager.FilterByStatus(entity.StatusBoarding)))
	assert.Equal(t, []string{"IB100", "IB300"}, flightNumbers(f.manager.FilterByAirline("Iberia")))
	assert.Empty(t, f.manager.FilterByAirline("Ryanair"))

	byOrigin, err := f.manager.FilterByRoute("MAD", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"IB100", "IB300"}, flightNumbers(byOrigin))

	byDestination, err := f.manager.FilterByRoute("", "BCN")
	require.NoError(t, err)
	assert.Equal(t, []string{"IB100", "UX400"}, flightNumbers(byDestination))

	both, err := f.manager.FilterByRoute("MAD", "LHR")
	require.NoError(t, err)
	assert.Equal(t, []string{"IB300"}, flightNumbers(both))

	_, err = f.manager.FilterByRoute("", "")
	assert.ErrorIs(t, err, usecase.ErrEmptyRoute)

	assert.Equal(t, 4, f.manager.Count(), "filters leave the queue intact")
}

func TestReorderByDelays(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	delayed := newFlight("IB100", 1)
	delayed.Status = entity.StatusDelayed
	_, err := f.manager.AddFlight(ctx, delayed)
	require.NoError(t, err)
	_, err = f.manager.AddFlight(ctx, newFlight("IB200", 2))
	require.NoError(t, err)
	_, err = f.manager.AddFlight(ctx, newFlight("IB300", 3))
	require.NoError(t, err)
	require.Equal(t, []string{"IB100", "IB200", "IB300"}, queueNumbers(t, f.manager))

	reordered := f.manager.ReorderByDelays()
	assert.Equal(t, []string{"IB200", "IB300", "IB100"}, flightNumbers(reordered))
	assert.Equal(t, []string{"IB200", "IB300", "IB100"}, queueNumbers(t, f.manager))
}

func TestReverseAndSwap(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for i, n := range []string{"IB100", "IB200", "IB300"} {
		_, err := f.manager.AddFlight(ctx, newFlight(n, i+1))
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"IB300", "IB200", "IB100"}, flightNumbers(f.manager.Reverse()))

	swapped, err := f.manager.Swap(0, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"IB100", "IB200", "IB300"}, flightNumbers(swapped))

	_, err = f.manager.Swap(0, 3)
	assert.ErrorIs(t, err, sequence.ErrOutOfRange)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ErrorsCount.WithLabelValues("swap")))
}

func TestReturnedFlightsAreCopies(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	in := newFlight("IB100", 1)
	_, err := f.manager.AddFlight(ctx, in)
	require.NoError(t, err)

	in.Status = entity.StatusDelayed
	listed := f.manager.List(0, 0)
	listed[0].Emergency = true

	first, ok := f.manager.First()
	require.True(t, ok)
	assert.Equal(t, entity.StatusScheduled, first.Status)
	assert.False(t, first.Emergency)
}

func TestEmptyQueueAccessors(t *testing.T) {
	f := newFixture(t, nil)

	_, ok := f.manager.First()
	assert.False(t, ok)
	_, ok = f.manager.Last()
	assert.False(t, ok)
	assert.Empty(t, f.manager.List(0, 0))
	assert.Empty(t, f.manager.List(5, 1))

	_, err := f.manager.History(context.Background(), 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
