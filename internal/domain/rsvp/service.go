package rsvp

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const defaultMaxPartySize = 4

type Config struct {
	MaxPartySize int
}

type Service struct {
	repo     Repository
	cfg      Config
	cache    StatsCache
	cacheTTL time.Duration
	now      func() time.Time
	newID    func() string
}

func NewService(repo Repository) *Service {
	return NewServiceWithConfig(repo, Config{MaxPartySize: defaultMaxPartySize})
}

func NewServiceWithConfig(repo Repository, cfg Config) *Service {
	if cfg.MaxPartySize <= 0 {
		cfg.MaxPartySize = defaultMaxPartySize
	}
	return &Service{
		repo:  repo,
		cfg:   cfg,
		cache: noopStatsCache{},
		// timestamptz keeps microseconds
		now:   func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		newID: uuid.NewString,
	}
}

// WithStatsCache serves Stats from cache for up to ttl. A nil cache or a
// non-positive ttl turns caching off.
func (s *Service) WithStatsCache(cache StatsCache, ttl time.Duration) *Service {
	if cache == nil || ttl <= 0 {
		s.cache = noopStatsCache{}
		s.cacheTTL = 0
		return s
	}
	s.cache = cache
	s.cacheTTL = ttl
	return s
}

// Submit creates a party or, when one already matches the submission's
// idempotency key, email, phone or display name, overwrites it in place.
// The returned bool reports whether a new party was created.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*Party, bool, error) {
	sub, err := normalizeSubmission(input, s.cfg.MaxPartySize)
	if err != nil {
		return nil, false, err
	}

	var (
		result  Party
		created bool
	)
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockSubmissions(ctx); err != nil {
			return err
		}

		candidates, err := tx.FindCandidates(ctx, sub.matchKey())
		if err != nil {
			return err
		}

		now := s.now()
		party := pickMatch(candidates, sub.matchKey())
		if party == nil {
			party = &Party{ID: s.newID(), CreatedAt: now}
			sub.apply(party, now)
			if err := tx.CreateParty(ctx, party); err != nil {
				return err
			}
			created = true
		} else {
			sub.apply(party, now)
			if err := tx.UpdateParty(ctx, party); err != nil {
				return err
			}
		}

		guests := sub.buildGuests(party.ID, s.newID)
		if err := tx.ReplaceGuests(ctx, party.ID, guests); err != nil {
			return err
		}
		party.Guests = guests
		result = *party
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	s.cache.Clear()
	return &result, created, nil
}

// Update overwrites the party with the given id. Unlike Submit it never
// looks at natural keys.
func (s *Service) Update(ctx context.Context, id string, input SubmitInput) (*Party, error) {
	if !validID(id) {
		return nil, ErrPartyNotFound
	}

	sub, err := normalizeSubmission(input, s.cfg.MaxPartySize)
	if err != nil {
		return nil, err
	}

	var result Party
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		party, err := tx.GetPartyByID(ctx, id)
		if err != nil {
			return err
		}

		sub.apply(party, s.now())
		if err := tx.UpdateParty(ctx, party); err != nil {
			return err
		}

		guests := sub.buildGuests(party.ID, s.newID)
		if err := tx.ReplaceGuests(ctx, party.ID, guests); err != nil {
			return err
		}
		party.Guests = guests
		result = *party
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Clear()
	return &result, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Party, error) {
	if !validID(id) {
		return nil, ErrPartyNotFound
	}
	return s.repo.GetPartyByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Party, error) {
	parties, err := s.repo.ListParties(ctx)
	if err != nil {
		return nil, err
	}
	if parties == nil {
		return []Party{}, nil
	}
	return parties, nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	if cached, ok := s.cache.Get(); ok {
		return cached, nil
	}

	counts, err := s.repo.CountStats(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		Total:       counts.Total,
		Attending:   counts.Attending,
		Declined:    counts.Total - counts.Attending,
		TotalGuests: counts.AttendingGuests,
	}
	s.cache.Set(stats, s.cacheTTL)
	return stats, nil
}

// validID accepts only the canonical hyphenated form stored in the database.
func validID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
