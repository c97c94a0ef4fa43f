package entity

import (
	"time"

	"gorm.io/gorm"
)

// Airport represents an airport identified by its IATA code
type Airport struct {
	ID        uint
	IATACode  string
	Name      string
	City      string
	Country   string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt
}
