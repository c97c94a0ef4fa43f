package repository

import (
	"context"

	"flight-queue-service/internal/domain/entity"
)

// AirportRepository defines the interface for airport operations
type AirportRepository interface {
	GetByIATACode(ctx context.Context, code string) (*entity.Airport, error)
}
