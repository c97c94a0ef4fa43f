package repository

import (
	"context"
	"time"

	"flight-queue-service/internal/domain/entity"
	"flight-queue-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormAirportRepository implements the AirportRepository interface
type GormAirportRepository struct {
	db *gorm.DB
}

// NewGormAirportRepository creates a new GORM airport repository
func NewGormAirportRepository(db *gorm.DB) repository.AirportRepository {
	return &GormAirportRepository{
		db: db,
	}
}

// Airports GORM model for database mapping
type Airports struct {
	ID        uint           `gorm:"primaryKey"`
	IATACode  string         `gorm:"column:iata_code;size:3;uniqueIndex"`
	Name      string         `gorm:"column:name"`
	City      string         `gorm:"column:city"`
	Country   string         `gorm:"column:country"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (Airports) TableName() string {
	return "airports"
}

// GetByIATACode finds an airport by its three-letter code
func (r *GormAirportRepository) GetByIATACode(ctx context.Context, code string) (*entity.Airport, error) {
	var airport Airports
	result := r.db.WithContext(ctx).Where("iata_code = ?", code).First(&airport)

	if result.Error != nil {
		return nil, translate(result.Error)
	}

	// Convert GORM model to domain entity
	return &entity.Airport{
		ID:        airport.ID,
		IATACode:  airport.IATACode,
		Name:      airport.Name,
		City:      airport.City,
		Country:   airport.Country,
		CreatedAt: airport.CreatedAt,
		UpdatedAt: airport.UpdatedAt,
		DeletedAt: airport.DeletedAt,
	}, nil
}

// Migrate creates or updates every table owned by the GORM repositories
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Flights{}, &Airlines{}, &Airports{})
}
