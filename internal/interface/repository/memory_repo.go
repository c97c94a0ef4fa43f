package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"flight-queue-service/internal/domain/entity"
	"flight-queue-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryFlightRepository is an in-process FlightRepository. Records are
// copied on the way in and out, so callers never share state with the store.
type MemoryFlightRepository struct {
	mu      sync.RWMutex
	nextID  uint
	flights map[uint]entity.Flight
	now     func() time.Time
}

// NewMemoryFlightRepository creates an empty in-memory flight store
func NewMemoryFlightRepository() *MemoryFlightRepository {
	return &MemoryFlightRepository{
		flights: make(map[uint]entity.Flight),
		now:     time.Now,
	}
}

// Create stores a new flight and assigns its ID
func (r *MemoryFlightRepository) Create(ctx context.Context, flight *entity.Flight) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.numberTaken(flight.FlightNumber, 0) {
		return repository.ErrConflict
	}

	r.nextID++
	now := r.now()
	flight.ID = r.nextID
	flight.CreatedAt = now
	flight.UpdatedAt = now
	r.flights[flight.ID] = *flight
	return nil
}

// Update replaces a stored flight
func (r *MemoryFlightRepository) Update(ctx context.Context, flight *entity.Flight) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.flights[flight.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.numberTaken(flight.FlightNumber, flight.ID) {
		return repository.ErrConflict
	}

	flight.CreatedAt = stored.CreatedAt
	flight.UpdatedAt = r.now()
	r.flights[flight.ID] = *flight
	return nil
}

// FindByID finds a flight by ID
func (r *MemoryFlightRepository) FindByID(ctx context.Context, id uint) (*entity.Flight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	flight, ok := r.flights[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &flight, nil
}

// FindByNumber finds a flight by flight number
func (r *MemoryFlightRepository) FindByNumber(ctx context.Context, flightNumber string) (*entity.Flight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, flight := range r.flights {
		if flight.FlightNumber == flightNumber {
			return &flight, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ListBySchedule returns every flight ordered by scheduled time, then ID
func (r *MemoryFlightRepository) ListBySchedule(ctx context.Context) ([]*entity.Flight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	flights := make([]*entity.Flight, 0, len(r.flights))
	for _, flight := range r.flights {
		flight := flight
		flights = append(flights, &flight)
	}
	sort.Slice(flights, func(i, j int) bool {
		if !flights[i].ScheduledAt.Equal(flights[j].ScheduledAt) {
			return flights[i].ScheduledAt.Before(flights[j].ScheduledAt)
		}
		return flights[i].ID < flights[j].ID
	})
	return flights, nil
}

func (r *MemoryFlightRepository) numberTaken(flightNumber string, except uint) bool {
	for id, flight := range r.flights {
		if id != except && flight.FlightNumber == flightNumber {
			return true
		}
	}
	return false
}

// MemoryFlightHistoryRepository is an in-process FlightHistoryRepository
type MemoryFlightHistoryRepository struct {
	mu      sync.RWMutex
	entries []entity.FlightHistory
}

// NewMemoryFlightHistoryRepository creates an empty in-memory history store
func NewMemoryFlightHistoryRepository() *MemoryFlightHistoryRepository {
	return &MemoryFlightHistoryRepository{}
}

// Append stores a new history entry
func (r *MemoryFlightHistoryRepository) Append(ctx context.Context, entry *entity.FlightHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == "" {
		entry.ID = primitive.NewObjectID().Hex()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	r.entries = append(r.entries, *entry)
	return nil
}

// ListByFlight returns the history of a flight in insertion order
func (r *MemoryFlightHistoryRepository) ListByFlight(ctx context.Context, flightID uint) ([]*entity.FlightHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*entity.FlightHistory, 0)
	for _, entry := range r.entries {
		if entry.FlightID == flightID {
			entry := entry
			entries = append(entries, &entry)
		}
	}
	return entries, nil
}

// MemoryReferenceRepository serves airline and airport lookups from maps
type MemoryReferenceRepository struct {
	mu       sync.RWMutex
	airlines map[string]entity.Airline
	airports map[string]entity.Airport
}

// NewMemoryReferenceRepository creates an empty reference store
func NewMemoryReferenceRepository() *MemoryReferenceRepository {
	return &MemoryReferenceRepository{
		airlines: make(map[string]entity.Airline),
		airports: make(map[string]entity.Airport),
	}
}

// PutAirline adds or replaces an airline keyed by code
func (r *MemoryReferenceRepository) PutAirline(airline entity.Airline) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.airlines[airline.Code] = airline
}

// PutAirport adds or replaces an airport keyed by IATA code
func (r *MemoryReferenceRepository) PutAirport(airport entity.Airport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.airports[airport.IATACode] = airport
}

// GetByCode finds an airline by code
func (r *MemoryReferenceRepository) GetByCode(ctx context.Context, code string) (*entity.Airline, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	airline, ok := r.airlines[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &airline, nil
}

// GetByIATACode finds an airport by IATA code
func (r *MemoryReferenceRepository) GetByIATACode(ctx context.Context, code string) (*entity.Airport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	airport, ok := r.airports[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &airport, nil
}
