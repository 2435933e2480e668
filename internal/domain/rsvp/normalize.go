package rsvp

import (
	"fmt"
	"strings"
	"time"
)

type guestInput struct {
	name string
	meal MealChoice
}

// submission is a SubmitInput after trimming and validation.
type submission struct {
	email          string
	phone          *string
	address        string
	message        *string
	attendance     Attendance
	guests         []guestInput
	idempotencyKey *string
}

func normalizeSubmission(input SubmitInput, maxPartySize int) (submission, error) {
	names := trimNames(input.GuestNames)
	if len(names) == 0 {
		return submission{}, invalid("At least one guest name is required")
	}
	if maxPartySize > 0 && len(names) > maxPartySize {
		return submission{}, invalid(fmt.Sprintf("At most %d guests per party", maxPartySize))
	}
	if len(input.MealChoices) != len(names) {
		return submission{}, invalid("Meal choices must match the number of guests")
	}

	guests := make([]guestInput, 0, len(names))
	for i, name := range names {
		meal := MealChoice(strings.ToUpper(strings.TrimSpace(input.MealChoices[i])))
		if !meal.Valid() {
			return submission{}, invalid(fmt.Sprintf("Invalid meal choice: %s", input.MealChoices[i]))
		}
		guests = append(guests, guestInput{name: name, meal: meal})
	}

	attendance := Attendance(strings.ToUpper(strings.TrimSpace(input.Attendance)))
	if !attendance.Valid() {
		return submission{}, invalid(fmt.Sprintf("Invalid attendance: %s", input.Attendance))
	}

	email := strings.TrimSpace(input.Email)
	if email == "" {
		return submission{}, invalid("Email is required")
	}
	address := strings.TrimSpace(input.Address)
	if address == "" {
		return submission{}, invalid("Address is required")
	}

	var message *string
	if input.Message != nil {
		message = optional(*input.Message)
	}

	return submission{
		email:          email,
		phone:          optional(input.Phone),
		address:        address,
		message:        message,
		attendance:     attendance,
		guests:         guests,
		idempotencyKey: optional(input.IdempotencyKey),
	}, nil
}

// trimNames trims every name and drops the ones left empty, keeping order.
func trimNames(raw []string) []string {
	names := make([]string, 0, len(raw))
	for _, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func (s submission) displayName() string {
	return DisplayName(s.guests[0].name)
}

func (s submission) matchKey() MatchKey {
	key := MatchKey{
		DisplayName: s.displayName(),
		Email:       s.email,
	}
	if s.phone != nil {
		key.Phone = *s.phone
	}
	if s.idempotencyKey != nil {
		key.IdempotencyKey = *s.idempotencyKey
	}
	return key
}

// apply overwrites every submitted field on party. CreatedAt and ID are left alone.
func (s submission) apply(party *Party, now time.Time) {
	party.Name = s.displayName()
	party.Email = s.email
	party.Phone = s.phone
	party.Address = s.address
	party.Message = s.message
	party.Attendance = s.attendance
	party.NumGuests = len(s.guests)
	party.UpdatedAt = now
	if s.idempotencyKey != nil {
		party.IdempotencyKey = s.idempotencyKey
	}
}

func (s submission) buildGuests(partyID string, newID func() string) []Guest {
	guests := make([]Guest, 0, len(s.guests))
	for i, input := range s.guests {
		guests = append(guests, Guest{
			ID:         newID(),
			PartyID:    partyID,
			Position:   i,
			Name:       input.name,
			MealChoice: mealOrDefault(input.meal),
		})
	}
	return guests
}

func mealOrDefault(meal MealChoice) MealChoice {
	if meal == "" {
		return MealFish
	}
	return meal
}

// pickMatch chooses which candidate a submission updates. Idempotency key wins,
// then email, then phone, then the derived display name.
func pickMatch(candidates []Party, key MatchKey) *Party {
	if len(candidates) == 0 {
		return nil
	}

	matchers := []func(Party) bool{
		func(p Party) bool {
			return key.IdempotencyKey != "" && p.IdempotencyKey != nil && *p.IdempotencyKey == key.IdempotencyKey
		},
		func(p Party) bool { return p.Email == key.Email },
		func(p Party) bool { return key.Phone != "" && p.Phone != nil && *p.Phone == key.Phone },
		func(p Party) bool { return p.Name == key.DisplayName },
	}

	for _, matches := range matchers {
		for i := range candidates {
			if matches(candidates[i]) {
				return &candidates[i]
			}
		}
	}
	return nil
}
