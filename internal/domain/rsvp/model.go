package rsvp

import "time"

type Attendance string

const (
	AttendanceYes   Attendance = "YES"
	AttendanceNo    Attendance = "NO"
	AttendanceMaybe Attendance = "MAYBE"
)

func (a Attendance) Valid() bool {
	switch a {
	case AttendanceYes, AttendanceNo, AttendanceMaybe:
		return true
	}
	return false
}

type MealChoice string

const (
	MealSteak   MealChoice = "STEAK"
	MealChicken MealChoice = "CHICKEN"
	MealFish    MealChoice = "FISH"
)

func (m MealChoice) Valid() bool {
	switch m {
	case MealSteak, MealChicken, MealFish:
		return true
	}
	return false
}

const displayNamePrefix = "Party of "

// DisplayName derives a party's name from its first guest.
func DisplayName(firstGuest string) string {
	return displayNamePrefix + firstGuest
}

type Party struct {
	ID             string     `gorm:"type:uuid;primaryKey"`
	Name           string     `gorm:"size:255;not null"`
	Email          string     `gorm:"size:255;not null;uniqueIndex"`
	Phone          *string    `gorm:"size:50;uniqueIndex"`
	Address        string     `gorm:"type:text;not null"`
	Message        *string    `gorm:"type:text"`
	Attendance     Attendance `gorm:"type:varchar(8);not null;default:YES"`
	NumGuests      int        `gorm:"column:num_guests;not null"`
	IdempotencyKey *string    `gorm:"size:128;uniqueIndex"`
	CreatedAt      time.Time  `gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime"`

	Guests []Guest `gorm:"foreignKey:PartyID;references:ID;constraint:OnDelete:CASCADE"`
}

func (Party) TableName() string {
	return "parties"
}

// GuestNames returns the guests' names in submission order.
func (p Party) GuestNames() []string {
	names := make([]string, 0, len(p.Guests))
	for _, guest := range p.Guests {
		names = append(names, guest.Name)
	}
	return names
}

type Guest struct {
	ID         string     `gorm:"type:uuid;primaryKey"`
	PartyID    string     `gorm:"type:uuid;not null;index"`
	Position   int        `gorm:"not null"`
	Name       string     `gorm:"size:255;not null"`
	MealChoice MealChoice `gorm:"type:varchar(16);not null;default:FISH"`
}

func (Guest) TableName() string {
	return "guests"
}

type SubmitInput struct {
	// Name is the submitter's own name. The party's display name is always
	// derived from the first guest, so it is only normalized and logged.
	Name           string
	Email          string
	Phone          string
	GuestNames     []string
	MealChoices    []string
	Address        string
	Message        *string
	Attendance     string
	IdempotencyKey string
}

// MatchKey holds the natural keys used to find an existing party on submit.
type MatchKey struct {
	IdempotencyKey string
	DisplayName    string
	Email          string
	Phone          string
}

type StatsCounts struct {
	Total           int64
	Attending       int64
	AttendingGuests int64
}

type Stats struct {
	Total       int64 `json:"total"`
	Attending   int64 `json:"attending"`
	Declined    int64 `json:"declined"`
	TotalGuests int64 `json:"totalGuests"`
}
