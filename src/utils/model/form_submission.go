package model

import (
	"time"

	"github.com/jackc/pgtype"
)

// One row per intention in a template specific side table.
// The table is addressed dynamically by template id, there's no static TableName.
type FormSubmission struct {
	IntentionId string
	Email       string

	// Arbitrary user entered fields plus a photos list
	FormData pgtype.JSONB `gorm:"type:jsonb"`

	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
