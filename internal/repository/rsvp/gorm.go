package rsvp

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	rsvpdomain "wedding-app-go/internal/domain/rsvp"
)

const submissionsLockKey = "rsvp_submissions"

// GormRepository stores parties in Postgres or SQLite.
type GormRepository struct {
	db *gorm.DB
}

var _ rsvpdomain.Repository = (*GormRepository)(nil)

func NewGorm(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Transaction(ctx context.Context, fn func(rsvpdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepository{db: tx})
	})
}

// LockSubmissions takes a transaction-scoped advisory lock on Postgres.
// SQLite serializes writers on its own.
func (r *GormRepository) LockSubmissions(ctx context.Context) error {
	if r.db.Dialector.Name() != "postgres" {
		return nil
	}
	return r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtext(?))", submissionsLockKey).
		Error
}

func (r *GormRepository) FindCandidates(ctx context.Context, key rsvpdomain.MatchKey) ([]rsvpdomain.Party, error) {
	query := r.db.WithContext(ctx).
		Where("name = ?", key.DisplayName).
		Or("email = ?", key.Email)
	if key.Phone != "" {
		query = query.Or("phone = ?", key.Phone)
	}
	if key.IdempotencyKey != "" {
		query = query.Or("idempotency_key = ?", key.IdempotencyKey)
	}

	var parties []rsvpdomain.Party
	if err := query.Order("created_at desc, id desc").Find(&parties).Error; err != nil {
		return nil, err
	}
	return parties, nil
}

func (r *GormRepository) GetPartyByID(ctx context.Context, id string) (*rsvpdomain.Party, error) {
	var party rsvpdomain.Party
	err := r.db.WithContext(ctx).
		Preload("Guests", orderGuests).
		Where("id = ?", id).
		First(&party).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, rsvpdomain.ErrPartyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &party, nil
}

func (r *GormRepository) CreateParty(ctx context.Context, party *rsvpdomain.Party) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(party).Error
	return translateError(err)
}

func (r *GormRepository) UpdateParty(ctx context.Context, party *rsvpdomain.Party) error {
	result := r.db.WithContext(ctx).
		Model(&rsvpdomain.Party{}).
		Where("id = ?", party.ID).
		Updates(map[string]interface{}{
			"name":            party.Name,
			"email":           party.Email,
			"phone":           party.Phone,
			"address":         party.Address,
			"message":         party.Message,
			"attendance":      party.Attendance,
			"num_guests":      party.NumGuests,
			"idempotency_key": party.IdempotencyKey,
			"updated_at":      party.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return rsvpdomain.ErrPartyNotFound
	}
	return nil
}

func (r *GormRepository) ReplaceGuests(ctx context.Context, partyID string, guests []rsvpdomain.Guest) error {
	if err := r.db.WithContext(ctx).
		Where("party_id = ?", partyID).
		Delete(&rsvpdomain.Guest{}).Error; err != nil {
		return err
	}
	if len(guests) == 0 {
		return nil
	}
	return translateError(r.db.WithContext(ctx).Create(&guests).Error)
}

func (r *GormRepository) ListParties(ctx context.Context) ([]rsvpdomain.Party, error) {
	var parties []rsvpdomain.Party
	if err := r.db.WithContext(ctx).
		Preload("Guests", orderGuests).
		Order("created_at desc, id desc").
		Find(&parties).Error; err != nil {
		return nil, err
	}
	return parties, nil
}

func (r *GormRepository) CountStats(ctx context.Context) (rsvpdomain.StatsCounts, error) {
	type statsRow struct {
		Total           int64 `gorm:"column:total"`
		Attending       int64 `gorm:"column:attending"`
		AttendingGuests int64 `gorm:"column:attending_guests"`
	}

	var row statsRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN attendance = ? THEN 1 ELSE 0 END), 0) AS attending,
			COALESCE(SUM(CASE WHEN attendance = ? THEN num_guests ELSE 0 END), 0) AS attending_guests
		FROM parties
	`, string(rsvpdomain.AttendanceYes), string(rsvpdomain.AttendanceYes)).Scan(&row).Error
	if err != nil {
		return rsvpdomain.StatsCounts{}, err
	}

	return rsvpdomain.StatsCounts{
		Total:           row.Total,
		Attending:       row.Attending,
		AttendingGuests: row.AttendingGuests,
	}, nil
}

func orderGuests(db *gorm.DB) *gorm.DB {
	return db.Order("position asc")
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return rsvpdomain.ErrPartyConflict
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
