package rsvp

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"
)

type fakePartyRepo struct {
	parties      map[string]*Party
	lockCalls    int
	failOnCreate error
}

func newFakePartyRepo() *fakePartyRepo {
	return &fakePartyRepo{parties: make(map[string]*Party)}
}

func (r *fakePartyRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	snapshot := make(map[string]*Party, len(r.parties))
	for id, party := range r.parties {
		copied := clonePartyForTest(*party)
		snapshot[id] = &copied
	}
	if err := fn(r); err != nil {
		r.parties = snapshot
		return err
	}
	return nil
}

func (r *fakePartyRepo) LockSubmissions(ctx context.Context) error {
	r.lockCalls++
	return nil
}

func (r *fakePartyRepo) FindCandidates(ctx context.Context, key MatchKey) ([]Party, error) {
	var result []Party
	for _, party := range r.parties {
		byKey := key.IdempotencyKey != "" && party.IdempotencyKey != nil && *party.IdempotencyKey == key.IdempotencyKey
		byPhone := key.Phone != "" && party.Phone != nil && *party.Phone == key.Phone
		if byKey || byPhone || party.Email == key.Email || party.Name == key.DisplayName {
			result = append(result, clonePartyForTest(*party))
		}
	}
	return result, nil
}

func (r *fakePartyRepo) GetPartyByID(ctx context.Context, id string) (*Party, error) {
	party, ok := r.parties[id]
	if !ok {
		return nil, ErrPartyNotFound
	}
	copied := clonePartyForTest(*party)
	return &copied, nil
}

func (r *fakePartyRepo) CreateParty(ctx context.Context, party *Party) error {
	if r.failOnCreate != nil {
		return r.failOnCreate
	}
	copied := clonePartyForTest(*party)
	copied.Guests = nil
	r.parties[party.ID] = &copied
	return nil
}

func (r *fakePartyRepo) UpdateParty(ctx context.Context, party *Party) error {
	existing, ok := r.parties[party.ID]
	if !ok {
		return ErrPartyNotFound
	}
	guests := existing.Guests
	copied := clonePartyForTest(*party)
	copied.Guests = guests
	r.parties[party.ID] = &copied
	return nil
}

func (r *fakePartyRepo) ReplaceGuests(ctx context.Context, partyID string, guests []Guest) error {
	party, ok := r.parties[partyID]
	if !ok {
		return ErrPartyNotFound
	}
	party.Guests = append([]Guest(nil), guests...)
	return nil
}

func (r *fakePartyRepo) ListParties(ctx context.Context) ([]Party, error) {
	var result []Party
	for _, party := range r.parties {
		result = append(result, clonePartyForTest(*party))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *fakePartyRepo) CountStats(ctx context.Context) (StatsCounts, error) {
	var counts StatsCounts
	for _, party := range r.parties {
		counts.Total++
		if party.Attendance == AttendanceYes {
			counts.Attending++
			counts.AttendingGuests += int64(party.NumGuests)
		}
	}
	return counts, nil
}

func clonePartyForTest(party Party) Party {
	party.Guests = append([]Guest(nil), party.Guests...)
	return party
}

func newTestService(repo Repository) *Service {
	svc := NewService(repo)
	current := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		current = current.Add(time.Minute)
		return current
	}
	return svc
}

func validInput() SubmitInput {
	message := "Happy to celebrate"
	return SubmitInput{
		Name:        "Karim",
		Email:       "karim@example.com",
		Phone:       "+15550000001",
		GuestNames:  []string{"Karim"},
		MealChoices: []string{"FISH"},
		Address:     "123 Wedding Ave",
		Message:     &message,
		Attendance:  "YES",
	}
}

func TestSubmitTrimsGuestNames(t *testing.T) {
	repo := newFakePartyRepo()
	svc := newTestService(repo)

	input := validInput()
	input.GuestNames = []string{" Karim ", " ", "Felicia"}
	input.MealChoices = []string{"FISH", "STEAK"}

	party, created, err := svc.Submit(context.Background(), input)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !created {
		t.Fatalf("expected new party")
	}
	if party.Name != "Party of Karim" {
		t.Fatalf("expected derived name, got %q", party.Name)
	}
	names := party.GuestNames()
	if len(names) != 2 || names[0] != "Karim" || names[1] != "Felicia" {
		t.Fatalf("expected [Karim Felicia], got %v", names)
	}
	if party.NumGuests != 2 {
		t.Fatalf("expected 2 guests, got %d", party.NumGuests)
	}
	if party.Guests[1].MealChoice != MealSteak || party.Guests[1].Position != 1 {
		t.Fatalf("expected second guest steak at position 1, got %+v", party.Guests[1])
	}
	if repo.lockCalls != 1 {
		t.Fatalf("expected submission lock taken once, got %d", repo.lockCalls)
	}
	stored := repo.parties[party.ID]
	if stored == nil || len(stored.Guests) != 2 {
		t.Fatalf("expected stored party with 2 guests, got %+v", stored)
	}
}

func TestSubmitSameEmailUpdatesInPlace(t *testing.T) {
	repo := newFakePartyRepo()
	svc := newTestService(repo)

	first, _, err := svc.Submit(context.Background(), validInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	input := validInput()
	input.Phone = "+15550000009"
	input.GuestNames = []string{"Karim", "Felicia", "Guest"}
	input.MealChoices = []string{"fish", " chicken ", "STEAK"}
	input.Attendance = "MAYBE"

	updated, created, err := svc.Submit(context.Background(), input)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created {
		t.Fatalf("expected update, got create")
	}
	if updated.ID != first.ID {
		t.Fatalf("expected stable id %s, got %s", first.ID, updated.ID)
	}
	if updated.Phone == nil || *updated.Phone != "+15550000009" {
		t.Fatalf("expected phone overwritten, got %v", updated.Phone)
	}
	if updated.NumGuests != 3 || updated.Attendance != AttendanceMaybe {
		t.Fatalf("expected 3 guests MAYBE, got %d %s", updated.NumGuests, updated.Attendance)
	}
	if !updated.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("expected created_at preserved, got %v vs %v", updated.CreatedAt, first.CreatedAt)
	}
	if len(repo.parties) != 1 {
		t.Fatalf("expected a single party, got %d", len(repo.parties))
	}
	if updated.Guests[1].MealChoice != MealChicken {
		t.Fatalf("expected meal normalized to CHICKEN, got %s", updated.Guests[1].MealChoice)
	}
}

func TestSubmitMatchesByPhoneAndDisplayName(t *testing.T) {
	repo := newFakePartyRepo()
	svc := newTestService(repo)

	first, _, err := svc.Submit(context.Background(), validInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	byPhone := validInput()
	byPhone.Email = "other@example.com"
	byPhone.GuestNames = []string{"Someone Else"}
	updated, created, err := svc.Submit(context.Background(), byPhone)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created || updated.ID != first.ID {
		t.Fatalf("expected phone match to update %s, got %s (created=%v)", first.ID, updated.ID, created)
	}

	byName := validInput()
	byName.Email = "third@example.com"
	byName.Phone = ""
	byName.GuestNames = []string{"Someone Else"}
	updated, created, err = svc.Submit(context.Background(), byName)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created || updated.ID != first.ID {
		t.Fatalf("expected display name match to update %s, got %s", first.ID, updated.ID)
	}
	if updated.Phone != nil {
		t.Fatalf("expected empty phone stored as nil, got %q", *updated.Phone)
	}
}

func TestSubmitIdempotencyKeyWinsOverEmail(t *testing.T) {
	repo := newFakePartyRepo()
	svc := newTestService(repo)

	keyed := validInput()
	keyed.IdempotencyKey = "device-1"
	first, _, err := svc.Submit(context.Background(), keyed)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	other := validInput()
	other.Email = "second@example.com"
	other.Phone = "+15550000002"
	other.GuestNames = []string{"Second"}
	second, _, err := svc.Submit(context.Background(), other)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Same key, but the email belongs to the second party.
	retry := validInput()
	retry.IdempotencyKey = "device-1"
	retry.Email = "second@example.com"
	retry.Phone = ""
	result, created, err := svc.Submit(context.Background(), retry)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created || result.ID != first.ID {
		t.Fatalf("expected key match %s, got %s (second %s)", first.ID, result.ID, second.ID)
	}
}

func TestSubmitRejectsBlankGuestNames(t *testing.T) {
	cases := [][]string{nil, {}, {""}, {" ", "\t"}}
	for _, names := range cases {
		repo := newFakePartyRepo()
		svc := newTestService(repo)

		input := validInput()
		input.GuestNames = names
		input.Email = ""
		input.Attendance = "NOPE"

		_, _, err := svc.Submit(context.Background(), input)
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("expected validation error for %q, got %v", names, err)
		}
		if validationErr.Message != "At least one guest name is required" {
			t.Fatalf("unexpected message %q", validationErr.Message)
		}
		if len(repo.parties) != 0 {
			t.Fatalf("expected nothing stored")
		}
	}
}

func TestSubmitRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*SubmitInput)
		message string
	}{
		{
			name:    "meal count mismatch",
			mutate:  func(in *SubmitInput) { in.GuestNames = []string{"A", "B"}; in.MealChoices = []string{"FISH"} },
			message: "Meal choices must match the number of guests",
		},
		{
			name:    "meal count counts trimmed names",
			mutate:  func(in *SubmitInput) { in.GuestNames = []string{"A", " "}; in.MealChoices = []string{"FISH", "FISH"} },
			message: "Meal choices must match the number of guests",
		},
		{
			name:    "unknown meal",
			mutate:  func(in *SubmitInput) { in.MealChoices = []string{"TOFU"} },
			message: "Invalid meal choice: TOFU",
		},
		{
			name:    "unknown attendance",
			mutate:  func(in *SubmitInput) { in.Attendance = "PERHAPS" },
			message: "Invalid attendance: PERHAPS",
		},
		{
			name: "party too large",
			mutate: func(in *SubmitInput) {
				in.GuestNames = []string{"A", "B", "C", "D", "E"}
				in.MealChoices = []string{"FISH", "FISH", "FISH", "FISH", "FISH"}
			},
			message: "At most 4 guests per party",
		},
		{
			name:    "missing email",
			mutate:  func(in *SubmitInput) { in.Email = "  " },
			message: "Email is required",
		},
		{
			name:    "missing address",
			mutate:  func(in *SubmitInput) { in.Address = "" },
			message: "Address is required",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(newFakePartyRepo())
			input := validInput()
			tc.mutate(&input)

			_, _, err := svc.Submit(context.Background(), input)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if validationErr.Message != tc.message {
				t.Fatalf("expected %q, got %q", tc.message, validationErr.Message)
			}
		})
	}
}

func TestSubmitRollsBackOnRepositoryError(t *testing.T) {
	repo := newFakePartyRepo()
	repo.failOnCreate = errors.New("db down")
	svc := newTestService(repo)

	_, _, err := svc.Submit(context.Background(), validInput())
	if err == nil || IsValidation(err) {
		t.Fatalf("expected repository error, got %v", err)
	}
	if len(repo.parties) != 0 {
		t.Fatalf("expected no party stored")
	}
}

func TestUpdateReplacesGuests(t *testing.T) {
	repo := newFakePartyRepo()
	svc := newTestService(repo)

	created, _, err := svc.Submit(context.Background(), validInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	input := validInput()
	input.GuestNames = []string{"Alice", "Bob"}
	input.MealChoices = []string{"STEAK", "CHICKEN"}
	input.Message = nil

	updated, err := svc.Update(context.Background(), created.ID, input)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.ID != created.ID || updated.Name != "Party of Alice" || updated.NumGuests != 2 {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if updated.Message != nil {
		t.Fatalf("expected message cleared")
	}
	if updated.Guests[0].ID == created.Guests[0].ID {
		t.Fatalf("expected guests to be reinserted with new ids")
	}
	if len(repo.parties[created.ID].Guests) != 2 {
		t.Fatalf("expected stored guests replaced")
	}
}

func TestUpdateUnknownParty(t *testing.T) {
	svc := newTestService(newFakePartyRepo())

	for _, id := range []string{"not-a-uuid", "6f1f6b36-9a0e-4a52-a3a4-1d1b8b4f0c11"} {
		_, err := svc.Update(context.Background(), id, validInput())
		if !errors.Is(err, ErrPartyNotFound) {
			t.Fatalf("expected not found for %q, got %v", id, err)
		}
	}
}

func TestGetUnknownParty(t *testing.T) {
	svc := newTestService(newFakePartyRepo())

	_, err := svc.Get(context.Background(), "abc")
	if !errors.Is(err, ErrPartyNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListEmptyIsNotNil(t *testing.T) {
	svc := newTestService(newFakePartyRepo())

	parties, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if parties == nil || len(parties) != 0 {
		t.Fatalf("expected empty slice, got %v", parties)
	}
}

func TestStatsCountsAttendingGuestsOnly(t *testing.T) {
	repo := newFakePartyRepo()
	svc := newTestService(repo)

	submissions := []SubmitInput{
		{Email: "a@example.com", GuestNames: []string{"A", "A+1"}, MealChoices: []string{"FISH", "FISH"}, Address: "x", Attendance: "YES"},
		{Email: "b@example.com", GuestNames: []string{"B"}, MealChoices: []string{"FISH"}, Address: "x", Attendance: "NO"},
		{Email: "c@example.com", GuestNames: []string{"C", "C+1", "C+2"}, MealChoices: []string{"FISH", "FISH", "FISH"}, Address: "x", Attendance: "MAYBE"},
	}
	for _, input := range submissions {
		if _, _, err := svc.Submit(context.Background(), input); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if stats.Total != 3 || stats.Attending != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.Declined != stats.Total-stats.Attending {
		t.Fatalf("expected declined = total - attending, got %+v", stats)
	}
	if stats.TotalGuests != 2 {
		t.Fatalf("expected only attending guests counted, got %d", stats.TotalGuests)
	}
}

type countingStatsRepo struct {
	*fakePartyRepo
	statsCalls int
}

func (r *countingStatsRepo) CountStats(ctx context.Context) (StatsCounts, error) {
	r.statsCalls++
	return r.fakePartyRepo.CountStats(ctx)
}

type mapStatsCache struct {
	stats *Stats
}

func (c *mapStatsCache) Get() (Stats, bool) {
	if c.stats == nil {
		return Stats{}, false
	}
	return *c.stats, true
}

func (c *mapStatsCache) Set(stats Stats, ttl time.Duration) {
	c.stats = &stats
}

func (c *mapStatsCache) Clear() {
	c.stats = nil
}

func TestStatsCacheIsClearedBySubmit(t *testing.T) {
	repo := &countingStatsRepo{fakePartyRepo: newFakePartyRepo()}
	svc := newTestService(repo).WithStatsCache(&mapStatsCache{}, time.Minute)
	ctx := context.Background()

	if _, _, err := svc.Submit(ctx, validInput()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for i := 0; i < 3; i++ {
		stats, err := svc.Stats(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if stats.Total != 1 {
			t.Fatalf("expected 1 party, got %+v", stats)
		}
	}
	if repo.statsCalls != 1 {
		t.Fatalf("expected one repository count, got %d", repo.statsCalls)
	}

	second := validInput()
	second.Email = "felicia@example.com"
	second.Phone = "+15550000002"
	second.GuestNames = []string{"Felicia"}
	if _, _, err := svc.Submit(ctx, second); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if stats.Total != 2 || repo.statsCalls != 2 {
		t.Fatalf("expected fresh stats after submit, got %+v after %d counts", stats, repo.statsCalls)
	}
}

func TestStatsWithoutCacheAlwaysCounts(t *testing.T) {
	repo := &countingStatsRepo{fakePartyRepo: newFakePartyRepo()}
	svc := newTestService(repo).WithStatsCache(&mapStatsCache{}, 0)

	for i := 0; i < 2; i++ {
		if _, err := svc.Stats(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}
	if repo.statsCalls != 2 {
		t.Fatalf("expected two repository counts, got %d", repo.statsCalls)
	}
}
