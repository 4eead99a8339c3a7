package model

import (
	"database/sql"
	"regexp"
	"time"

	"github.com/lib/pq"
	"github.com/rs/xid"
)

const (
	TableIntention = "intentions"
)

const (
	IntentionStatusPending  = "pending"
	IntentionStatusApproved = "approved"
)

const (
	PlanBasic    = "basic"
	PlanStandard = "standard"
	PlanPremium  = "premium"
)

// Template ids double as side table names, so they are never interpolated
// into a query before passing this pattern.
var templatePattern = regexp.MustCompile(`^[a-z_]+$`)

type Intention struct {
	ID int `gorm:"primaryKey"`

	// Opaque token, externally visible
	IntentionId string

	Email      string
	TemplateId string
	Plan       string
	Price      float64
	Status     string

	// Provider payment ids associated with this intention, no duplicates.
	// A single intention may accumulate multiple payment attempts.
	PaymentIds pq.StringArray `gorm:"type:text[]"`

	// Access expiry, null until the first approval
	ExpiresIn sql.NullTime

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Intention) TableName() string {
	return TableIntention
}

func NewIntentionId() string {
	return "in_" + xid.New().String()
}

func IsValidTemplateId(templateId string) bool {
	return templatePattern.MatchString(templateId)
}

func IsValidPlan(plan string) bool {
	switch plan {
	case PlanBasic, PlanStandard, PlanPremium:
		return true
	}
	return false
}
