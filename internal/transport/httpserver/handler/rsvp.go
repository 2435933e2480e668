package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	rsvpdomain "wedding-app-go/internal/domain/rsvp"
)

const (
	idempotencyHeader       = "Idempotency-Key"
	maxIdempotencyKeyLength = 128
)

type rsvpRequest struct {
	Name        string   `json:"name" validate:"max=255"`
	Email       string   `json:"email" validate:"omitempty,email,max=255"`
	Phone       *string  `json:"phone" validate:"omitempty,max=50"`
	GuestNames  []string `json:"guestNames" validate:"dive,max=255"`
	MealChoices []string `json:"mealChoices"`
	Address     string   `json:"address" validate:"max=1000"`
	Message     *string  `json:"message" validate:"omitempty,max=2000"`
	Attendance  string   `json:"attendance"`
}

func (r rsvpRequest) trimmed() rsvpRequest {
	out := rsvpRequest{
		Name:        strings.TrimSpace(r.Name),
		Email:       strings.TrimSpace(r.Email),
		Address:     strings.TrimSpace(r.Address),
		Attendance:  strings.TrimSpace(r.Attendance),
		GuestNames:  make([]string, len(r.GuestNames)),
		MealChoices: make([]string, len(r.MealChoices)),
	}
	for i, name := range r.GuestNames {
		out.GuestNames[i] = strings.TrimSpace(name)
	}
	for i, meal := range r.MealChoices {
		out.MealChoices[i] = strings.TrimSpace(meal)
	}
	if r.Phone != nil {
		phone := strings.TrimSpace(*r.Phone)
		out.Phone = &phone
	}
	if r.Message != nil {
		message := strings.TrimSpace(*r.Message)
		out.Message = &message
	}
	return out
}

func (r rsvpRequest) toInput(idempotencyKey string) rsvpdomain.SubmitInput {
	input := rsvpdomain.SubmitInput{
		Name:           r.Name,
		Email:          r.Email,
		GuestNames:     r.GuestNames,
		MealChoices:    r.MealChoices,
		Address:        r.Address,
		Message:        r.Message,
		Attendance:     r.Attendance,
		IdempotencyKey: idempotencyKey,
	}
	if r.Phone != nil {
		input.Phone = *r.Phone
	}
	return input
}

type guestResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MealChoice string `json:"mealChoice"`
	PartyID    string `json:"partyId"`
}

type partyResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Phone      *string         `json:"phone"`
	NumGuests  int             `json:"numGuests"`
	Guests     []guestResponse `json:"guests"`
	GuestNames []string        `json:"guestNames"`
	Address    string          `json:"address"`
	Message    *string         `json:"message"`
	Attendance string          `json:"attendance"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *Handlers) SubmitRSVP(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRSVPRequest(w, r, "rsvp.submit")
	if !ok {
		return
	}

	key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
	if len(key) > maxIdempotencyKeyLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "Idempotency-Key must be at most 128 characters")
		return
	}

	party, created, err := h.RSVP.Submit(r.Context(), req.toInput(key))
	if err != nil {
		h.writeRSVPError(w, "rsvp.submit", err)
		return
	}

	h.log.Info("rsvp.submit: party saved", "party_id", party.ID, "created", created, "num_guests", party.NumGuests, "attendance", party.Attendance)
	writeJSON(w, http.StatusCreated, toPartyResponse(*party))
}

func (h *Handlers) UpdateRSVP(w http.ResponseWriter, r *http.Request) {
	partyID := strings.TrimSpace(chi.URLParam(r, "id"))
	if partyID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}

	req, ok := h.decodeRSVPRequest(w, r, "rsvp.update")
	if !ok {
		return
	}

	party, err := h.RSVP.Update(r.Context(), partyID, req.toInput(""))
	if err != nil {
		h.writeRSVPError(w, "rsvp.update", err, "party_id", partyID)
		return
	}

	h.log.Info("rsvp.update: party saved", "party_id", party.ID, "num_guests", party.NumGuests, "attendance", party.Attendance)
	writeJSON(w, http.StatusOK, toPartyResponse(*party))
}

func (h *Handlers) GetRSVP(w http.ResponseWriter, r *http.Request) {
	partyID := strings.TrimSpace(chi.URLParam(r, "id"))
	party, err := h.RSVP.Get(r.Context(), partyID)
	if err != nil {
		h.writeRSVPError(w, "rsvp.get", err, "party_id", partyID)
		return
	}

	writeJSON(w, http.StatusOK, toPartyResponse(*party))
}

func (h *Handlers) ListRSVPs(w http.ResponseWriter, r *http.Request) {
	parties, err := h.RSVP.List(r.Context())
	if err != nil {
		h.writeRSVPError(w, "rsvp.list", err)
		return
	}

	response := make([]partyResponse, 0, len(parties))
	for _, party := range parties {
		response = append(response, toPartyResponse(party))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) RSVPStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.RSVP.Stats(r.Context())
	if err != nil {
		h.writeRSVPError(w, "rsvp.stats", err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *Handlers) decodeRSVPRequest(w http.ResponseWriter, r *http.Request, op string) (rsvpRequest, bool) {
	var req rsvpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log.BusinessError(op+": invalid json", err)
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return rsvpRequest{}, false
	}

	req = req.trimmed()
	if err := h.validate.Struct(req); err != nil {
		h.log.BusinessError(op+": invalid request", err)
		writeError(w, http.StatusBadRequest, "invalid_request", validationMessage(err))
		return rsvpRequest{}, false
	}
	return req, true
}

func (h *Handlers) writeRSVPError(w http.ResponseWriter, op string, err error, args ...any) {
	var validationErr *rsvpdomain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		h.log.BusinessError(op+": invalid submission", err, args...)
		writeError(w, http.StatusBadRequest, "invalid_request", validationErr.Message)
	case errors.Is(err, rsvpdomain.ErrPartyNotFound):
		h.log.BusinessError(op+": party not found", err, args...)
		writeError(w, http.StatusNotFound, "party_not_found", "party not found")
	case errors.Is(err, rsvpdomain.ErrPartyConflict):
		h.log.BusinessError(op+": party conflict", err, args...)
		writeError(w, http.StatusConflict, "party_conflict", "email, phone or idempotency key already belongs to another party")
	default:
		h.log.InternalError(op+": failed", err, args...)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func toPartyResponse(party rsvpdomain.Party) partyResponse {
	guests := make([]guestResponse, 0, len(party.Guests))
	for _, guest := range party.Guests {
		guests = append(guests, guestResponse{
			ID:         guest.ID,
			Name:       guest.Name,
			MealChoice: string(guest.MealChoice),
			PartyID:    guest.PartyID,
		})
	}

	return partyResponse{
		ID:         party.ID,
		Name:       party.Name,
		Email:      party.Email,
		Phone:      party.Phone,
		NumGuests:  party.NumGuests,
		Guests:     guests,
		GuestNames: party.GuestNames(),
		Address:    party.Address,
		Message:    party.Message,
		Attendance: string(party.Attendance),
		CreatedAt:  party.CreatedAt,
	}
}
