package repository

import (
	"context"
	"time"

	"flight-queue-service/internal/domain/entity"
	"flight-queue-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormAirlineRepository implements the AirlineRepository interface
type GormAirlineRepository struct {
	db *gorm.DB
}

// NewGormAirlineRepository creates a new GORM airline repository
func NewGormAirlineRepository(db *gorm.DB) repository.AirlineRepository {
	return &GormAirlineRepository{
		db: db,
	}
}

// Airlines GORM model for database mapping
type Airlines struct {
	ID            uint           `gorm:"primaryKey"`
	Code          string         `gorm:"column:code;uniqueIndex"`
	Name          string         `gorm:"column:name"`
	OriginCountry string         `gorm:"column:origin_country"`
	LogoURL       string         `gorm:"column:logo_url"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName overrides the default table name
func (Airlines) TableName() string {
	return "airlines"
}

// GetByCode finds an airline by code
func (r *GormAirlineRepository) GetByCode(ctx context.Context, code string) (*entity.Airline, error) {
	var airline Airlines
	result := r.db.WithContext(ctx).Where("code = ?", code).First(&airline)

	if result.Error != nil {
		return nil, translate(result.Error)
	}

	// Convert GORM model to domain entity
	return &entity.Airline{
		ID:            airline.ID,
		Code:          airline.Code,
		Name:          airline.Name,
		OriginCountry: airline.OriginCountry,
		LogoURL:       airline.LogoURL,
		CreatedAt:     airline.CreatedAt,
		UpdatedAt:     airline.UpdatedAt,
		DeletedAt:     airline.DeletedAt,
	}, nil
}
