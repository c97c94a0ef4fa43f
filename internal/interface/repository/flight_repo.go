package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flight-queue-service/internal/domain/entity"
	"flight-queue-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormFlightRepository implements the FlightRepository interface
type GormFlightRepository struct {
	db *gorm.DB
}

// NewGormFlightRepository creates a new GORM flight repository
func NewGormFlightRepository(db *gorm.DB) repository.FlightRepository {
	return &GormFlightRepository{
		db: db,
	}
}

// Flights GORM model for database mapping
type Flights struct {
	gorm.Model
	FlightNumber string    `gorm:"column:flight_number;uniqueIndex;size:6"`
	Airline      string    `gorm:"column:airline;index"`
	Origin       string    `gorm:"column:origin;size:3"`
	Destination  string    `gorm:"column:destination;size:3"`
	ScheduledAt  time.Time `gorm:"column:scheduled_at;index"`
	Emergency    bool      `gorm:"column:emergency;default:false"`
	Status       string    `gorm:"column:status;index"`
}

// TableName overrides the default table name
func (Flights) TableName() string {
	return "flights"
}

// Create inserts a new flight into the database
func (r *GormFlightRepository) Create(ctx context.Context, flight *entity.Flight) error {
	model := toFlightModel(flight)

	result := r.db.WithContext(ctx).Create(&model)
	if result.Error != nil {
		return translate(result.Error)
	}

	// Update the entity with the generated ID
	flight.ID = model.ID
	flight.CreatedAt = model.CreatedAt
	flight.UpdatedAt = model.UpdatedAt

	return nil
}

// Update writes every field of the flight back to the database
func (r *GormFlightRepository) Update(ctx context.Context, flight *entity.Flight) error {
	now := time.Now()

	result := r.db.WithContext(ctx).Model(&Flights{}).
		Where("id = ?", flight.ID).
		Updates(map[string]interface{}{
			"flight_number": flight.FlightNumber,
			"airline":       flight.Airline,
			"origin":        flight.Origin,
			"destination":   flight.Destination,
			"scheduled_at":  flight.ScheduledAt,
			"emergency":     flight.Emergency,
			"status":        string(flight.Status),
			"updated_at":    now,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}

	flight.UpdatedAt = now
	return nil
}

// FindByID finds a flight by its primary key
func (r *GormFlightRepository) FindByID(ctx context.Context, id uint) (*entity.Flight, error) {
	var flight Flights
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&flight)

	if result.Error != nil {
		return nil, translate(result.Error)
	}

	return toFlightEntity(flight), nil
}

// FindByNumber finds a flight by its flight number
func (r *GormFlightRepository) FindByNumber(ctx context.Context, flightNumber string) (*entity.Flight, error) {
	var flight Flights
	result := r.db.WithContext(ctx).Where("flight_number = ?", flightNumber).First(&flight)

	if result.Error != nil {
		return nil, translate(result.Error)
	}

	return toFlightEntity(flight), nil
}

// ListBySchedule returns every flight ordered by scheduled time
func (r *GormFlightRepository) ListBySchedule(ctx context.Context) ([]*entity.Flight, error) {
	var flights []Flights
	result := r.db.WithContext(ctx).Order("scheduled_at ASC").Order("id ASC").Find(&flights)

	if result.Error != nil {
		return nil, result.Error
	}

	// Convert to domain entities
	entities := make([]*entity.Flight, 0, len(flights))
	for _, flight := range flights {
		entities = append(entities, toFlightEntity(flight))
	}

	return entities, nil
}

func toFlightModel(flight *entity.Flight) Flights {
	model := Flights{
		FlightNumber: flight.FlightNumber,
		Airline:      flight.Airline,
		Origin:       flight.Origin,
		Destination:  flight.Destination,
		ScheduledAt:  flight.ScheduledAt,
		Emergency:    flight.Emergency,
		Status:       string(flight.Status),
	}
	model.ID = flight.ID
	return model
}

func toFlightEntity(model Flights) *entity.Flight {
	return &entity.Flight{
		ID:           model.ID,
		FlightNumber: model.FlightNumber,
		Airline:      model.Airline,
		Origin:       model.Origin,
		Destination:  model.Destination,
		ScheduledAt:  model.ScheduledAt,
		Emergency:    model.Emergency,
		Status:       entity.FlightStatus(model.Status),
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

// translate maps GORM errors onto the repository sentinels. Duplicate keys
// are only reported as gorm.ErrDuplicatedKey when the connection is opened
// with TranslateError.
func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", repository.ErrConflict, err)
	}
	return err
}
