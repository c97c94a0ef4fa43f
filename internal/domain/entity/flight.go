// internal/domain/entity/flight.go
package entity

import (
	"time"
)

// FlightStatus is the operational state of a flight
type FlightStatus string

const (
	StatusScheduled FlightStatus = "scheduled"
	StatusBoarding  FlightStatus = "boarding"
	StatusDeparted  FlightStatus = "departed"
	StatusDelayed   FlightStatus = "delayed"
	StatusCancelled FlightStatus = "cancelled"
)

// FlightStatuses lists every valid status in lifecycle order
var FlightStatuses = []FlightStatus{
	StatusScheduled,
	StatusBoarding,
	StatusDeparted,
	StatusDelayed,
	StatusCancelled,
}

// Valid reports whether s is one of the known statuses
func (s FlightStatus) Valid() bool {
	for _, known := range FlightStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Flight is a scheduled flight as held by the flight store
type Flight struct {
	ID           uint
	FlightNumber string // [A-Z]{2}\d{3,4}, unique
	Airline      string
	Origin       string // IATA code
	Destination  string // IATA code
	ScheduledAt  time.Time
	Emergency    bool
	Status       FlightStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsDelayed reports whether the flight sinks to the back of the queue on reorder
func (f *Flight) IsDelayed() bool {
	return f.Status == StatusDelayed
}

// FlightUpdate carries a partial update; nil fields are left unchanged
type FlightUpdate struct {
	FlightNumber *string
	Airline      *string
	Origin       *string
	Destination  *string
	ScheduledAt  *time.Time
	Emergency    *bool
	Status       *FlightStatus
}

// Apply copies the set fields of u onto f
func (u FlightUpdate) Apply(f *Flight) {
	if u.FlightNumber != nil {
		f.FlightNumber = *u.FlightNumber
	}
	if u.Airline != nil {
		f.Airline = *u.Airline
	}
	if u.Origin != nil {
		f.Origin = *u.Origin
	}
	if u.Destination != nil {
		f.Destination = *u.Destination
	}
	if u.ScheduledAt != nil {
		f.ScheduledAt = *u.ScheduledAt
	}
	if u.Emergency != nil {
		f.Emergency = *u.Emergency
	}
	if u.Status != nil {
		f.Status = *u.Status
	}
}
