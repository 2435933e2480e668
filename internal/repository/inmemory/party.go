package inmemory

import (
	"context"
	"sort"
	"sync"

	rsvpdomain "wedding-app-go/internal/domain/rsvp"
)

// PartyRepository keeps parties in process memory. It backs DB_DRIVER=memory
// and the HTTP tests. Transactions work on a copy that replaces the live
// state only when the callback succeeds.
type PartyRepository struct {
	mu    sync.RWMutex
	state partyState
}

var (
	_ rsvpdomain.Repository = (*PartyRepository)(nil)
	_ rsvpdomain.Repository = (*partyTx)(nil)
)

func NewPartyRepository() *PartyRepository {
	return &PartyRepository{state: make(partyState)}
}

func (r *PartyRepository) Transaction(ctx context.Context, fn func(rsvpdomain.Repository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	work := r.state.clone()
	if err := fn(&partyTx{state: work}); err != nil {
		return err
	}
	r.state = work
	return nil
}

// LockSubmissions is a no-op: Transaction already holds the write lock.
func (r *PartyRepository) LockSubmissions(ctx context.Context) error {
	return nil
}

func (r *PartyRepository) FindCandidates(ctx context.Context, key rsvpdomain.MatchKey) ([]rsvpdomain.Party, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.findCandidates(key), nil
}

func (r *PartyRepository) GetPartyByID(ctx context.Context, id string) (*rsvpdomain.Party, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.get(id)
}

func (r *PartyRepository) CreateParty(ctx context.Context, party *rsvpdomain.Party) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.create(party)
}

func (r *PartyRepository) UpdateParty(ctx context.Context, party *rsvpdomain.Party) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.update(party)
}

func (r *PartyRepository) ReplaceGuests(ctx context.Context, partyID string, guests []rsvpdomain.Guest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.replaceGuests(partyID, guests)
}

func (r *PartyRepository) ListParties(ctx context.Context) ([]rsvpdomain.Party, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.list(), nil
}

func (r *PartyRepository) CountStats(ctx context.Context) (rsvpdomain.StatsCounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.countStats(), nil
}

// partyTx is the view handed to Transaction callbacks; the caller already
// holds the repository lock.
type partyTx struct {
	state partyState
}

func (t *partyTx) Transaction(ctx context.Context, fn func(rsvpdomain.Repository) error) error {
	return fn(t)
}

func (t *partyTx) LockSubmissions(ctx context.Context) error {
	return nil
}

func (t *partyTx) FindCandidates(ctx context.Context, key rsvpdomain.MatchKey) ([]rsvpdomain.Party, error) {
	return t.state.findCandidates(key), nil
}

func (t *partyTx) GetPartyByID(ctx context.Context, id string) (*rsvpdomain.Party, error) {
	return t.state.get(id)
}

func (t *partyTx) CreateParty(ctx context.Context, party *rsvpdomain.Party) error {
	return t.state.create(party)
}

func (t *partyTx) UpdateParty(ctx context.Context, party *rsvpdomain.Party) error {
	return t.state.update(party)
}

func (t *partyTx) ReplaceGuests(ctx context.Context, partyID string, guests []rsvpdomain.Guest) error {
	return t.state.replaceGuests(partyID, guests)
}

func (t *partyTx) ListParties(ctx context.Context) ([]rsvpdomain.Party, error) {
	return t.state.list(), nil
}

func (t *partyTx) CountStats(ctx context.Context) (rsvpdomain.StatsCounts, error) {
	return t.state.countStats(), nil
}

type partyState map[string]rsvpdomain.Party

func (s partyState) clone() partyState {
	copied := make(partyState, len(s))
	for id, party := range s {
		copied[id] = cloneParty(party)
	}
	return copied
}

func (s partyState) findCandidates(key rsvpdomain.MatchKey) []rsvpdomain.Party {
	var result []rsvpdomain.Party
	for _, party := range s {
		if party.Name == key.DisplayName ||
			party.Email == key.Email ||
			(key.Phone != "" && equalPtr(party.Phone, &key.Phone)) ||
			(key.IdempotencyKey != "" && equalPtr(party.IdempotencyKey, &key.IdempotencyKey)) {
			result = append(result, cloneParty(party))
		}
	}
	sortNewestFirst(result)
	return result
}

func (s partyState) get(id string) (*rsvpdomain.Party, error) {
	party, ok := s[id]
	if !ok {
		return nil, rsvpdomain.ErrPartyNotFound
	}
	copied := cloneParty(party)
	return &copied, nil
}

func (s partyState) create(party *rsvpdomain.Party) error {
	if _, exists := s[party.ID]; exists {
		return rsvpdomain.ErrPartyConflict
	}
	if s.violatesUnique(*party) {
		return rsvpdomain.ErrPartyConflict
	}
	stored := cloneParty(*party)
	stored.Guests = nil
	s[party.ID] = stored
	return nil
}

func (s partyState) update(party *rsvpdomain.Party) error {
	existing, ok := s[party.ID]
	if !ok {
		return rsvpdomain.ErrPartyNotFound
	}
	if s.violatesUnique(*party) {
		return rsvpdomain.ErrPartyConflict
	}
	stored := cloneParty(*party)
	stored.CreatedAt = existing.CreatedAt
	stored.Guests = existing.Guests
	s[party.ID] = stored
	return nil
}

func (s partyState) replaceGuests(partyID string, guests []rsvpdomain.Guest) error {
	party, ok := s[partyID]
	if !ok {
		return rsvpdomain.ErrPartyNotFound
	}
	party.Guests = append([]rsvpdomain.Guest(nil), guests...)
	s[partyID] = party
	return nil
}

func (s partyState) list() []rsvpdomain.Party {
	result := make([]rsvpdomain.Party, 0, len(s))
	for _, party := range s {
		result = append(result, cloneParty(party))
	}
	sortNewestFirst(result)
	return result
}

func (s partyState) countStats() rsvpdomain.StatsCounts {
	var counts rsvpdomain.StatsCounts
	for _, party := range s {
		counts.Total++
		if party.Attendance == rsvpdomain.AttendanceYes {
			counts.Attending++
			counts.AttendingGuests += int64(party.NumGuests)
		}
	}
	return counts
}

// violatesUnique mirrors the email, phone and idempotency_key unique indexes.
func (s partyState) violatesUnique(party rsvpdomain.Party) bool {
	for id, other := range s {
		if id == party.ID {
			continue
		}
		if other.Email == party.Email ||
			equalPtr(other.Phone, party.Phone) ||
			equalPtr(other.IdempotencyKey, party.IdempotencyKey) {
			return true
		}
	}
	return false
}

func sortNewestFirst(parties []rsvpdomain.Party) {
	sort.Slice(parties, func(i, j int) bool {
		if parties[i].CreatedAt.Equal(parties[j].CreatedAt) {
			return parties[i].ID > parties[j].ID
		}
		return parties[i].CreatedAt.After(parties[j].CreatedAt)
	})
}

func cloneParty(party rsvpdomain.Party) rsvpdomain.Party {
	party.Guests = append([]rsvpdomain.Guest(nil), party.Guests...)
	return party
}

// equalPtr reports whether both values are set and equal. NULLs never collide.
func equalPtr(a, b *string) bool {
	return a != nil && b != nil && *a == *b
}
