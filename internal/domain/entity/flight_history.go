package entity

import "time"

// FlightHistory records one status transition of a flight
type FlightHistory struct {
	ID             string       `bson:"_id,omitempty"`
	FlightID       uint         `bson:"flightId"`
	FlightNumber   string       `bson:"flightNumber"`
	PreviousStatus FlightStatus `bson:"previousStatus,omitempty"`
	NewStatus      FlightStatus `bson:"newStatus"`
	Notes          string       `bson:"notes,omitempty"`
	Timestamp      time.Time    `bson:"timestamp"`
}
