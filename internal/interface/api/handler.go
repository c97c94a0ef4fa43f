package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"flight-queue-service/internal/domain/entity"
	"flight-queue-service/internal/domain/repository"
	"flight-queue-service/internal/usecase"
	"flight-queue-service/pkg/logger"
	"flight-queue-service/pkg/sequence"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// FlightService is the queue and store operations the API exposes
type FlightService interface {
	AddFlight(ctx context.Context, flight *entity.Flight) (entity.Flight, error)
	InsertFlightAt(ctx context.Context, flight *entity.Flight, position int) (entity.Flight, error)
	RemoveByID(ctx context.Context, id uint) (entity.Flight, error)
	UpdateFlight(ctx context.Context, id uint, update entity.FlightUpdate) (entity.Flight, error)
	List(skip, limit int) []entity.Flight
	Count() int
	First() (entity.Flight, bool)
	Last() (entity.Flight, bool)
	GetByID(ctx context.Context, id uint) (entity.Flight, error)
	FindByNumber(ctx context.Context, flightNumber string) (entity.Flight, error)
	FilterByStatus(status entity.FlightStatus) []entity.Flight
	FilterByAirline(airline string) []entity.Flight
	FilterByRoute(origin, destination string) ([]entity.Flight, error)
	ReorderByDelays() []entity.Flight
	Reverse() []entity.Flight
	Swap(a, b int) ([]entity.Flight, error)
	History(ctx context.Context, id uint) ([]*entity.FlightHistory, error)
}

var errBadRequest = errors.New("bad request")

// Handler serves the flight desk HTTP API
type Handler struct {
	flights  FlightService
	airlines repository.AirlineRepository
	airports repository.AirportRepository
	gatherer prometheus.Gatherer
	logger   logger.Logger
}

// NewHandler creates the API handler. gatherer backs /metrics.
func NewHandler(
	flights FlightService,
	airlines repository.AirlineRepository,
	airports repository.AirportRepository,
	gatherer prometheus.Gatherer,
	logger logger.Logger,
) *Handler {
	return &Handler{
		flights:  flights,
		airlines: airlines,
		airports: airports,
		gatherer: gatherer,
		logger:   logger,
	}
}

// Routes returns the mux with every endpoint registered, wrapped in the
// request logging middleware.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /flights", h.createFlight)
	mux.HandleFunc("GET /flights", h.listFlights)
	mux.HandleFunc("GET /flights/total", h.countFlights)
	mux.HandleFunc("GET /flights/{id}", h.getFlight)
	mux.HandleFunc("PUT /flights/{id}", h.updateFlight)
	mux.HandleFunc("DELETE /flights/{id}", h.removeFlight)
	mux.HandleFunc("GET /flights/{id}/history", h.flightHistory)
	mux.HandleFunc("POST /flights/position/{position}", h.insertFlightAt)

	mux.HandleFunc("GET /flights/queue/first", h.firstFlight)
	mux.HandleFunc("GET /flights/queue/last", h.lastFlight)
	mux.HandleFunc("POST /flights/queue/reverse", h.reverseQueue)
	mux.HandleFunc("POST /flights/queue/swap", h.swapFlights)
	mux.HandleFunc("POST /flights/reorder/delays", h.reorderByDelays)

	mux.HandleFunc("GET /flights/filter/status/{status}", h.filterByStatus)
	mux.HandleFunc("GET /flights/filter/airline/{airline}", h.filterByAirline)
	mux.HandleFunc("GET /flights/filter/route", h.filterByRoute)
	mux.HandleFunc("GET /flights/search", h.searchFlight)

	mux.HandleFunc("GET /airlines/{code}", h.getAirline)
	mux.HandleFunc("GET /airports/{code}", h.getAirport)

	mux.Handle("GET /metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	return RequestLogger(h.logger)(mux)
}

func (h *Handler) createFlight(w http.ResponseWriter, r *http.Request) {
	var req flightRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	flight, err := h.flights.AddFlight(r.Context(), req.toEntity())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFlightResponse(flight))
}

func (h *Handler) insertFlightAt(w http.ResponseWriter, r *http.Request) {
	position, err := pathInt(r, "position")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req flightRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	flight, err := h.flights.InsertFlightAt(r.Context(), req.toEntity(), position)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFlightResponse(flight))
}

func (h *Handler) listFlights(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFlightResponses(h.flights.List(skip, limit)))
}

func (h *Handler) countFlights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, countResponse{Total: h.flights.Count()})
}

func (h *Handler) getFlight(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	flight, err := h.flights.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFlightResponse(flight))
}

func (h *Handler) updateFlight(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var patch flightPatch
	if err := decodeJSON(r, &patch); err != nil {
		h.writeError(w, r, err)
		return
	}

	flight, err := h.flights.UpdateFlight(r.Context(), id, patch.toUpdate())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFlightResponse(flight))
}

func (h *Handler) removeFlight(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	flight, err := h.flights.RemoveByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFlightResponse(flight))
}

func (h *Handler) flightHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	entries, err := h.flights.History(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toHistoryResponses(entries))
}

func (h *Handler) firstFlight(w http.ResponseWriter, r *http.Request) {
	flight, ok := h.flights.First()
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "queue is empty"})
		return
	}
	writeJSON(w, http.StatusOK, toFlightResponse(flight))
}

func (h *Handler) lastFlight(w http.ResponseWriter, r *http.Request) {
	flight, ok := h.flights.Last()
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "queue is empty"})
		return
	}
	writeJSON(w, http.StatusOK, toFlightResponse(flight))
}

func (h *Handler) reverseQueue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toFlightResponses(h.flights.Reverse()))
}

func (h *Handler) swapFlights(w http.ResponseWriter, r *http.Request) {
	var req swapRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Position1 == nil || req.Position2 == nil {
		h.writeError(w, r, fmt.Errorf("%w: position1 and position2 are required", errBadRequest))
		return
	}

	flights, err := h.flights.Swap(*req.Position1, *req.Position2)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFlightResponses(flights))
}

func (h *Handler) reorderByDelays(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toFlightResponses(h.flights.ReorderByDelays()))
}

func (h *Handler) filterByStatus(w http.ResponseWriter, r *http.Request) {
	status := entity.FlightStatus(r.PathValue("status"))
	if !status.Valid() {
		h.writeError(w, r, fmt.Errorf("%w: unknown status %q", errBadRequest, status))
		return
	}
	writeJSON(w, http.StatusOK, toFlightResponses(h.flights.FilterByStatus(status)))
}

func (h *Handler) filterByAirline(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toFlightResponses(h.flights.FilterByAirline(r.PathValue("airline"))))
}

func (h *Handler) filterByRoute(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	origin := strings.ToUpper(strings.TrimSpace(query.Get("origin")))
	destination := strings.ToUpper(strings.TrimSpace(query.Get("destination")))

	flights, err := h.flights.FilterByRoute(origin, destination)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFlightResponses(flights))
}

func (h *Handler) searchFlight(w http.ResponseWriter, r *http.Request) {
	number := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("number")))
	if number == "" {
		h.writeError(w, r, fmt.Errorf("%w: number is required", errBadRequest))
		return
	}
	flight, err := h.flights.FindByNumber(r.Context(), number)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFlightResponse(flight))
}

func (h *Handler) getAirline(w http.ResponseWriter, r *http.Request) {
	airline, err := h.airlines.GetByCode(r.Context(), r.PathValue("code"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, airlineResponse{
		Code:          airline.Code,
		Name:          airline.Name,
		OriginCountry: airline.OriginCountry,
		LogoURL:       airline.LogoURL,
	})
}

func (h *Handler) getAirport(w http.ResponseWriter, r *http.Request) {
	airport, err := h.airports.GetByIATACode(r.Context(), strings.ToUpper(r.PathValue("code")))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, airportResponse{
		IATACode: airport.IATACode,
		Name:     airport.Name,
		City:     airport.City,
		Country:  airport.Country,
	})
}

// writeError maps domain errors onto status codes. Anything unrecognised is
// logged and reported as a 500 without its details.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *usecase.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:    usecase.ErrInvalidFlight.Error(),
			Problems: verr.Problems(),
		})
	case errors.Is(err, errBadRequest),
		errors.Is(err, sequence.ErrOutOfRange),
		errors.Is(err, usecase.ErrEmptyRoute):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, usecase.ErrNotQueued):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrDuplicateFlight):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		loggerFrom(r.Context(), h.logger).Error("Request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func pathID(r *http.Request) (uint, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid flight id %q", errBadRequest, raw)
	}
	return uint(id), nil
}

func pathInt(r *http.Request, name string) (int, error) {
	raw := r.PathValue(name)
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", errBadRequest, name, raw)
	}
	return v, nil
}

func queryInt(r *http.Request, name string, defaultValue int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer, got %q", errBadRequest, name, raw)
	}
	return v, nil
}
