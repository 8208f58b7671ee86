package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TimestampLayout is how registration dates are written to every store
const TimestampLayout = "2006-01-02 15:04:05"

// RecordHeader is the header row of the local registration log and the spreadsheet mirror
var RecordHeader = []string{"Name", "Email", "Blood Group", "Registration Date"}

// Record is one completed info-collection session
type Record struct {
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	BloodGroup string    `json:"blood_group"` // empty when the caller did not answer
	Timestamp  time.Time `json:"timestamp"`
}

// Row returns the record in RecordHeader column order
func (r Record) Row() []string {
	return []string{r.Name, r.Email, r.BloodGroup, r.Timestamp.Format(TimestampLayout)}
}

// Registration mirrors a Record into Postgres
type Registration struct {
	gorm.Model
	RecordID     string    `json:"record_id" gorm:"uniqueIndex;not null"`
	Name         string    `json:"name"`
	Email        string    `json:"email" gorm:"index"`
	BloodGroup   string    `json:"blood_group"`
	RegisteredAt time.Time `json:"registered_at" gorm:"not null"`
}

// NewRegistration builds the database row for a record
func NewRegistration(r Record) *Registration {
	return &Registration{
		RecordID:     uuid.NewString(),
		Name:         r.Name,
		Email:        r.Email,
		BloodGroup:   r.BloodGroup,
		RegisteredAt: r.Timestamp,
	}
}

// BeforeCreate fills the record id when the caller left it empty
func (r *Registration) BeforeCreate(tx *gorm.DB) error {
	if r.RecordID == "" {
		r.RecordID = uuid.NewString()
	}
	return nil
}
