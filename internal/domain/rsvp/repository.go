package rsvp

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	// LockSubmissions serializes find-then-write submissions until the
	// surrounding transaction ends.
	LockSubmissions(ctx context.Context) error
	FindCandidates(ctx context.Context, key MatchKey) ([]Party, error)
	GetPartyByID(ctx context.Context, id string) (*Party, error)
	CreateParty(ctx context.Context, party *Party) error
	UpdateParty(ctx context.Context, party *Party) error
	ReplaceGuests(ctx context.Context, partyID string, guests []Guest) error
	ListParties(ctx context.Context) ([]Party, error)
	CountStats(ctx context.Context) (StatsCounts, error)
}
