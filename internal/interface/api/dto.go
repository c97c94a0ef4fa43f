package api

import (
	"time"

	"flight-queue-service/internal/domain/entity"
)

type flightRequest struct {
	FlightNumber string    `json:"flight_number"`
	Airline      string    `json:"airline"`
	Origin       string    `json:"origin"`
	Destination  string    `json:"destination"`
	ScheduledAt  time.Time `json:"scheduled_at"`
	Emergency    bool      `json:"emergency"`
	Status       string    `json:"status,omitempty"`
}

func (r flightRequest) toEntity() *entity.Flight {
	return &entity.Flight{
		FlightNumber: r.FlightNumber,
		Airline:      r.Airline,
		Origin:       r.Origin,
		Destination:  r.Destination,
		ScheduledAt:  r.ScheduledAt,
		Emergency:    r.Emergency,
		Status:       entity.FlightStatus(r.Status),
	}
}

// flightPatch is the body of PUT /flights/{id}; absent fields stay as they are
type flightPatch struct {
	FlightNumber *string    `json:"flight_number"`
	Airline      *string    `json:"airline"`
	Origin       *string    `json:"origin"`
	Destination  *string    `json:"destination"`
	ScheduledAt  *time.Time `json:"scheduled_at"`
	Emergency    *bool      `json:"emergency"`
	Status       *string    `json:"status"`
}

func (p flightPatch) toUpdate() entity.FlightUpdate {
	update := entity.FlightUpdate{
		FlightNumber: p.FlightNumber,
		Airline:      p.Airline,
		Origin:       p.Origin,
		Destination:  p.Destination,
		ScheduledAt:  p.ScheduledAt,
		Emergency:    p.Emergency,
	}
	if p.Status != nil {
		status := entity.FlightStatus(*p.Status)
		update.Status = &status
	}
	return update
}

type swapRequest struct {
	Position1 *int `json:"position1"`
	Position2 *int `json:"position2"`
}

type flightResponse struct {
	ID           uint      `json:"id"`
	FlightNumber string    `json:"flight_number"`
	Airline      string    `json:"airline"`
	Origin       string    `json:"origin"`
	Destination  string    `json:"destination"`
	ScheduledAt  time.Time `json:"scheduled_at"`
	Emergency    bool      `json:"emergency"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toFlightResponse(f entity.Flight) flightResponse {
	return flightResponse{
		ID:           f.ID,
		FlightNumber: f.FlightNumber,
		Airline:      f.Airline,
		Origin:       f.Origin,
		Destination:  f.Destination,
		ScheduledAt:  f.ScheduledAt,
		Emergency:    f.Emergency,
		Status:       string(f.Status),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

func toFlightResponses(flights []entity.Flight) []flightResponse {
	out := make([]flightResponse, 0, len(flights))
	for _, f := range flights {
		out = append(out, toFlightResponse(f))
	}
	return out
}

type historyResponse struct {
	ID             string    `json:"id"`
	FlightID       uint      `json:"flight_id"`
	FlightNumber   string    `json:"flight_number"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	NewStatus      string    `json:"new_status"`
	Notes          string    `json:"notes,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

func toHistoryResponses(entries []*entity.FlightHistory) []historyResponse {
	out := make([]historyResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyResponse{
			ID:             e.ID,
			FlightID:       e.FlightID,
			FlightNumber:   e.FlightNumber,
			PreviousStatus: string(e.PreviousStatus),
			NewStatus:      string(e.NewStatus),
			Notes:          e.Notes,
			Timestamp:      e.Timestamp,
		})
	}
	return out
}

type airlineResponse struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	OriginCountry string `json:"origin_country,omitempty"`
	LogoURL       string `json:"logo_url,omitempty"`
}

type airportResponse struct {
	IATACode string `json:"iata_code"`
	Name     string `json:"name"`
	City     string `json:"city,omitempty"`
	Country  string `json:"country,omitempty"`
}

type countResponse struct {
	Total int `json:"total"`
}

type errorResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}
