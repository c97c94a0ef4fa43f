package usecase

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"flight-queue-service/internal/domain/entity"

	"go.uber.org/multierr"
)

var (
	flightNumberPattern = regexp.MustCompile(`^[A-Z]{2}\d{3,4}$`)
	airportCodePattern  = regexp.MustCompile(`^[A-Z]{3}$`)
)

// ErrInvalidFlight is matched by every *ValidationError
var ErrInvalidFlight = errors.New("invalid flight")

// ValidationError aggregates every problem found in a flight
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidFlight, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrInvalidFlight) match any validation failure
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidFlight
}

// Problems returns one message per failed check
func (e *ValidationError) Problems() []string {
	errs := multierr.Errors(e.Err)
	problems := make([]string, 0, len(errs))
	for _, err := range errs {
		problems = append(problems, err.Error())
	}
	return problems
}

// FlightValidator checks flight fields before they reach the store or the queue
type FlightValidator struct {
	grace time.Duration
	now   func() time.Time
}

// NewFlightValidator creates a validator that accepts schedules up to grace
// in the past. now defaults to time.Now when nil.
func NewFlightValidator(grace time.Duration, now func() time.Time) *FlightValidator {
	if now == nil {
		now = time.Now
	}
	return &FlightValidator{
		grace: grace,
		now:   now,
	}
}

// ValidateFlightNumber checks for two capital letters followed by 3-4 digits
func (v *FlightValidator) ValidateFlightNumber(flightNumber string) error {
	if !flightNumberPattern.MatchString(flightNumber) {
		return fmt.Errorf("flight number %q must be two capital letters followed by 3-4 digits (e.g. IB1234)", flightNumber)
	}
	return nil
}

// ValidateStatus checks the status is one of the known values
func (v *FlightValidator) ValidateStatus(status entity.FlightStatus) error {
	if !status.Valid() {
		names := make([]string, 0, len(entity.FlightStatuses))
		for _, s := range entity.FlightStatuses {
			names = append(names, string(s))
		}
		return fmt.Errorf("status %q must be one of: %s", status, strings.Join(names, ", "))
	}
	return nil
}

// ValidateSchedule rejects times further in the past than the grace window
func (v *FlightValidator) ValidateSchedule(scheduledAt time.Time) error {
	if scheduledAt.IsZero() {
		return errors.New("scheduled time is required")
	}
	earliest := v.now().Add(-v.grace)
	if scheduledAt.Before(earliest) {
		return fmt.Errorf("scheduled time %s is in the past", scheduledAt.Format(time.RFC3339))
	}
	return nil
}

// ValidateRoute checks both airport codes and that they differ
func (v *FlightValidator) ValidateRoute(origin, destination string) error {
	if origin == destination {
		return fmt.Errorf("origin and destination must differ, both are %q", origin)
	}
	var err error
	if !airportCodePattern.MatchString(origin) {
		err = multierr.Append(err, fmt.Errorf("origin %q must be three capital letters (e.g. MAD)", origin))
	}
	if !airportCodePattern.MatchString(destination) {
		err = multierr.Append(err, fmt.Errorf("destination %q must be three capital letters (e.g. BCN)", destination))
	}
	return err
}

// Validate runs every check on f and returns a *ValidationError listing all
// failures. The schedule window is only enforced when checkSchedule is set,
// so updates to flights already in the past stay possible.
func (v *FlightValidator) Validate(f *entity.Flight, checkSchedule bool) error {
	var err error
	err = multierr.Append(err, v.ValidateFlightNumber(f.FlightNumber))
	if strings.TrimSpace(f.Airline) == "" {
		err = multierr.Append(err, errors.New("airline is required"))
	}
	err = multierr.Append(err, v.ValidateStatus(f.Status))
	if checkSchedule {
		err = multierr.Append(err, v.ValidateSchedule(f.ScheduledAt))
	}
	err = multierr.Append(err, v.ValidateRoute(f.Origin, f.Destination))

	if err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}
