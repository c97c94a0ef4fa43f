package repository

import (
	"context"

	"flight-queue-service/internal/domain/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedReference inserts airlines and airports that are not stored yet.
// Existing rows, matched by code, are left untouched.
func SeedReference(ctx context.Context, db *gorm.DB, airlines []entity.Airline, airports []entity.Airport) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, a := range airlines {
			model := Airlines{
				Code:          a.Code,
				Name:          a.Name,
				OriginCountry: a.OriginCountry,
				LogoURL:       a.LogoURL,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "code"}},
				DoNothing: true,
			}).Create(&model).Error
			if err != nil {
				return translate(err)
			}
		}
		for _, a := range airports {
			model := Airports{
				IATACode: a.IATACode,
				Name:     a.Name,
				City:     a.City,
				Country:  a.Country,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "iata_code"}},
				DoNothing: true,
			}).Create(&model).Error
			if err != nil {
				return translate(err)
			}
		}
		return nil
	})
}

// Seed adds every airline and airport to the in-memory reference store
func (r *MemoryReferenceRepository) Seed(airlines []entity.Airline, airports []entity.Airport) {
	for _, a := range airlines {
		r.PutAirline(a)
	}
	for _, a := range airports {
		r.PutAirport(a)
	}
}
