package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"flight-queue-service/internal/domain/entity"
	"flight-queue-service/internal/domain/repository"
	"flight-queue-service/pkg/logger"
	"flight-queue-service/pkg/metrics"
	"flight-queue-service/pkg/sequence"
)

var (
	// ErrDuplicateFlight is returned when a flight number is already taken
	ErrDuplicateFlight = errors.New("flight number already exists")
	// ErrNotQueued is returned when a flight exists but is not in the queue
	ErrNotQueued = errors.New("flight is not in the queue")
	// ErrEmptyRoute is returned when a route filter names neither end
	ErrEmptyRoute = errors.New("origin or destination is required")
)

// FlightManager keeps the departure queue in step with the flight store.
// The queue is a rebuildable index: the store stays the system of record and
// every update that can change ordering rebuilds the queue from it.
// All methods are serialized by a single mutex.
type FlightManager struct {
	mu    sync.Mutex
	queue *sequence.Sequence[*entity.Flight]

	flightRepo  repository.FlightRepository
	historyRepo repository.FlightHistoryRepository
	validator   *FlightValidator
	metrics     *metrics.Metrics
	logger      logger.Logger
	pageLimit   int
}

// NewFlightManager creates a flight manager with an empty queue. Call Load to
// populate it from the store.
func NewFlightManager(
	flightRepo repository.FlightRepository,
	historyRepo repository.FlightHistoryRepository,
	validator *FlightValidator,
	metrics *metrics.Metrics,
	logger logger.Logger,
	pageLimit int,
) *FlightManager {
	return &FlightManager{
		queue:       sequence.New[*entity.Flight](),
		flightRepo:  flightRepo,
		historyRepo: historyRepo,
		validator:   validator,
		metrics:     metrics,
		logger:      logger,
		pageLimit:   pageLimit,
	}
}

// Load rebuilds the queue from the flights in the store
func (m *FlightManager) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.rebuild(ctx)
	m.observe("load", err)
	return err
}

// AddFlight stores a new flight and queues it: emergencies at the front,
// everything else at the back.
func (m *FlightManager) AddFlight(ctx context.Context, flight *entity.Flight) (entity.Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.create(ctx, flight)
	if err == nil {
		queued := *flight
		if queued.Emergency {
			m.queue.PushFront(&queued)
		} else {
			m.queue.PushBack(&queued)
		}
		m.logger.Info("Flight queued", "flight", flight.FlightNumber, "id", flight.ID, "emergency", flight.Emergency)
	}
	m.observe("add", err)
	if err != nil {
		return entity.Flight{}, err
	}
	return *flight, nil
}

// InsertFlightAt stores a new flight and queues it at position. The position
// is checked before anything is written.
func (m *FlightManager) InsertFlightAt(ctx context.Context, flight *entity.Flight, position int) (entity.Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.insertAt(ctx, flight, position)
	m.observe("insert_at", err)
	if err != nil {
		return entity.Flight{}, err
	}
	return *flight, nil
}

func (m *FlightManager) insertAt(ctx context.Context, flight *entity.Flight, position int) error {
	if position < 0 || position > m.queue.Len() {
		return fmt.Errorf("insert at %d: %w [0, %d]", position, sequence.ErrOutOfRange, m.queue.Len())
	}
	if err := m.create(ctx, flight); err != nil {
		return err
	}
	queued := *flight
	if err := m.queue.Insert(position, &queued); err != nil {
		return err
	}
	m.logger.Info("Flight queued at position", "flight", flight.FlightNumber, "id", flight.ID, "position", position)
	return nil
}

// RemoveAt takes the flight at position out of the queue and marks it
// cancelled in the store.
func (m *FlightManager) RemoveAt(ctx context.Context, position int) (entity.Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	flight, err := m.removeAt(ctx, position)
	m.observe("remove_at", err)
	return flight, err
}

// RemoveByID finds a queued flight by ID and removes it like RemoveAt
func (m *FlightManager) RemoveByID(ctx context.Context, id uint) (entity.Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var (
		flight entity.Flight
		err    error
	)
	_, position, ok := m.queue.Find(func(f *entity.Flight) bool { return f.ID == id })
	if !ok {
		err = fmt.Errorf("flight %d: %w", id, ErrNotQueued)
	} else {
		flight, err = m.removeAt(ctx, position)
	}
	m.observe("remove", err)
	return flight, err
}

func (m *FlightManager) removeAt(ctx context.Context, position int) (entity.Flight, error) {
	flight, err := m.queue.Remove(position)
	if err != nil {
		return entity.Flight{}, err
	}

	previous := flight.Status
	flight.Status = entity.StatusCancelled
	if err := m.flightRepo.Update(ctx, flight); err != nil {
		// Put it back where it was so the queue still mirrors the store
		flight.Status = previous
		if rerr := m.queue.Insert(position, flight); rerr != nil {
			m.logger.Error("Failed to restore flight after store error", "id", flight.ID, "error", rerr)
		}
		m.logger.Error("Failed to cancel flight", "id", flight.ID, "error", err)
		return entity.Flight{}, fmt.Errorf("cancel flight %d: %w", flight.ID, err)
	}

	m.recordHistory(ctx, flight, previous, "removed from queue")
	m.logger.Info("Flight removed from queue", "flight", flight.FlightNumber, "id", flight.ID, "position", position)
	return *flight, nil
}

// UpdateFlight applies update to a stored flight and rebuilds the queue
func (m *FlightManager) UpdateFlight(ctx context.Context, id uint, update entity.FlightUpdate) (entity.Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	flight, err := m.update(ctx, id, update)
	m.observe("update", err)
	return flight, err
}

func (m *FlightManager) update(ctx context.Context, id uint, update entity.FlightUpdate) (entity.Flight, error) {
	current, err := m.flightRepo.FindByID(ctx, id)
	if err != nil {
		return entity.Flight{}, fmt.Errorf("flight %d: %w", id, err)
	}

	updated := *current
	update.Apply(&updated)

	scheduleChanged := update.ScheduledAt != nil && !update.ScheduledAt.Equal(current.ScheduledAt)
	if err := m.validator.Validate(&updated, scheduleChanged); err != nil {
		return entity.Flight{}, err
	}

	if updated.FlightNumber != current.FlightNumber {
		if err := m.ensureNumberFree(ctx, updated.FlightNumber); err != nil {
			return entity.Flight{}, err
		}
	}

	if err := m.flightRepo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return entity.Flight{}, fmt.Errorf("%s: %w", updated.FlightNumber, ErrDuplicateFlight)
		}
		return entity.Flight{}, fmt.Errorf("update flight %d: %w", id, err)
	}

	if updated.Status != current.Status {
		m.recordHistory(ctx, &updated, current.Status, "status updated")
	}
	m.logger.Info("Flight updated", "flight", updated.FlightNumber, "id", id)

	// Ordering fields may have changed; the store decides the new order
	if err := m.rebuild(ctx); err != nil {
		return entity.Flight{}, err
	}
	return updated, nil
}

// List returns up to limit queued flights starting at skip. A limit outside
// (0, page limit] is replaced by the page limit.
func (m *FlightManager) List(skip, limit int) []entity.Flight {
	m.mu.Lock()
	defer m.mu.Unlock()

	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > m.pageLimit {
		limit = m.pageLimit
	}

	flights := make([]entity.Flight, 0, min(limit, max(m.queue.Len()-skip, 0)))
	for position, f := range m.queue.All() {
		if position < skip {
			continue
		}
		if len(flights) == limit {
			break
		}
		flights = append(flights, *f)
	}
	m.observe("list", nil)
	return flights
}

// Count returns the number of queued flights
func (m *FlightManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.queue.Len()
}

// First returns the flight at the head of the queue
func (m *FlightManager) First() (entity.Flight, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.queue.Front()
	if !ok {
		return entity.Flight{}, false
	}
	return *f, true
}

// Last returns the flight at the tail of the queue
func (m *FlightManager) Last() (entity.Flight, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.queue.Back()
	if !ok {
		return entity.Flight{}, false
	}
	return *f, true
}

// GetByID reads a flight from the store
func (m *FlightManager) GetByID(ctx context.Context, id uint) (entity.Flight, error) {
	f, err := m.flightRepo.FindByID(ctx, id)
	if err != nil {
		return entity.Flight{}, fmt.Errorf("flight %d: %w", id, err)
	}
	return *f, nil
}

// FindByNumber reads a flight from the store by flight number
func (m *FlightManager) FindByNumber(ctx context.Context, flightNumber string) (entity.Flight, error) {
	f, err := m.flightRepo.FindByNumber(ctx, flightNumber)
	if err != nil {
		return entity.Flight{}, fmt.Errorf("flight %s: %w", flightNumber, err)
	}
	return *f, nil
}

// FilterByStatus returns queued flights with status, in queue order
func (m *FlightManager) FilterByStatus(status entity.FlightStatus) []entity.Flight {
	return m.filter("filter_status", func(f *entity.Flight) bool {
		return f.Status == status
	})
}

// FilterByAirline returns queued flights of airline, in queue order
func (m *FlightManager) FilterByAirline(airline string) []entity.Flight {
	return m.filter("filter_airline", func(f *entity.Flight) bool {
		return f.Airline == airline
	})
}

// FilterByRoute returns queued flights matching origin and/or destination.
// An empty value matches any airport, but not both may be empty.
func (m *FlightManager) FilterByRoute(origin, destination string) ([]entity.Flight, error) {
	if origin == "" && destination == "" {
		return nil, ErrEmptyRoute
	}
	return m.filter("filter_route", func(f *entity.Flight) bool {
		return (origin == "" || f.Origin == origin) &&
			(destination == "" || f.Destination == destination)
	}), nil
}

func (m *FlightManager) filter(op string, match func(*entity.Flight) bool) []entity.Flight {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := snapshot(m.queue.Filter(match).Values())
	m.observe(op, nil)
	return matched
}

// ReorderByDelays re-applies the priority policy to the current queue order,
// sending delayed flights to the back.
func (m *FlightManager) ReorderByDelays() []entity.Flight {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queue = PrioritizeFlights(m.queue.Values())
	m.observe("reorder_delays", nil)
	m.logger.Info("Queue reordered by delays", "length", m.queue.Len())
	return snapshot(m.queue.Values())
}

// Reverse flips the queue order
func (m *FlightManager) Reverse() []entity.Flight {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queue.Reverse()
	m.observe("reverse", nil)
	return snapshot(m.queue.Values())
}

// Swap exchanges the flights at two queue positions
func (m *FlightManager) Swap(a, b int) ([]entity.Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.queue.Swap(a, b)
	m.observe("swap", err)
	if err != nil {
		return nil, err
	}
	m.logger.Info("Queue positions swapped", "a", a, "b", b)
	return snapshot(m.queue.Values()), nil
}

// History returns the status history of a stored flight
func (m *FlightManager) History(ctx context.Context, id uint) ([]*entity.FlightHistory, error) {
	if _, err := m.flightRepo.FindByID(ctx, id); err != nil {
		return nil, fmt.Errorf("flight %d: %w", id, err)
	}
	return m.historyRepo.ListByFlight(ctx, id)
}

// create validates and stores a new flight. Caller holds mu.
func (m *FlightManager) create(ctx context.Context, flight *entity.Flight) error {
	if flight.Status == "" {
		flight.Status = entity.StatusScheduled
	}
	if err := m.validator.Validate(flight, true); err != nil {
		return err
	}
	if err := m.ensureNumberFree(ctx, flight.FlightNumber); err != nil {
		return err
	}

	if err := m.flightRepo.Create(ctx, flight); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fmt.Errorf("%s: %w", flight.FlightNumber, ErrDuplicateFlight)
		}
		return fmt.Errorf("store flight %s: %w", flight.FlightNumber, err)
	}

	m.recordHistory(ctx, flight, "", "created")
	return nil
}

func (m *FlightManager) ensureNumberFree(ctx context.Context, flightNumber string) error {
	_, err := m.flightRepo.FindByNumber(ctx, flightNumber)
	switch {
	case err == nil:
		return fmt.Errorf("%s: %w", flightNumber, ErrDuplicateFlight)
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("look up flight %s: %w", flightNumber, err)
	}
}

// rebuild replaces the queue with a fresh one built from every flight in
// the store that is not cancelled. Caller holds mu.
func (m *FlightManager) rebuild(ctx context.Context) error {
	start := time.Now()

	flights, err := m.flightRepo.ListBySchedule(ctx)
	if err != nil {
		m.logger.Error("Failed to load flights", "error", err)
		return fmt.Errorf("load flights: %w", err)
	}
	// Cancelled flights left the queue when they were removed
	active := flights[:0]
	for _, f := range flights {
		if f.Status != entity.StatusCancelled {
			active = append(active, f)
		}
	}
	m.queue = PrioritizeFlights(active)

	elapsed := time.Since(start)
	m.metrics.RebuildDuration.Observe(elapsed.Seconds())
	m.logger.Info("Queue rebuilt", "length", m.queue.Len(), "duration", elapsed)
	return nil
}

// recordHistory appends to the audit trail. A failure here does not undo
// the store write that already happened, so it is logged and counted only.
func (m *FlightManager) recordHistory(ctx context.Context, flight *entity.Flight, previous entity.FlightStatus, notes string) {
	entry := &entity.FlightHistory{
		FlightID:       flight.ID,
		FlightNumber:   flight.FlightNumber,
		PreviousStatus: previous,
		NewStatus:      flight.Status,
		Notes:          notes,
		Timestamp:      time.Now(),
	}
	if err := m.historyRepo.Append(ctx, entry); err != nil {
		m.metrics.ErrorsCount.WithLabelValues("history").Inc()
		m.logger.Error("Failed to record flight history", "id", flight.ID, "error", err)
	}
}

func (m *FlightManager) observe(op string, err error) {
	m.metrics.Operations.WithLabelValues(op).Inc()
	if err != nil {
		m.metrics.ErrorsCount.WithLabelValues(op).Inc()
	}
	m.metrics.QueueLength.Set(float64(m.queue.Len()))
}

func snapshot(flights []*entity.Flight) []entity.Flight {
	out := make([]entity.Flight, 0, len(flights))
	for _, f := range flights {
		out = append(out, *f)
	}
	return out
}
