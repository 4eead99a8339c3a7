package reconcile

import (
	"encoding/json"
	"time"

	"github.com/dedicart/gateway/src/utils/model"
)

// How a verified, approved payment should be applied to an intention.
// Supplied by the provider through the notification URL, never inferred
// from the intention's current state.
type Operation string

const (
	OperationNew     Operation = "new"
	OperationRenewal Operation = "renewal"
)

func ParseOperation(raw string) Operation {
	if raw == string(OperationRenewal) {
		return OperationRenewal
	}
	return OperationNew
}

// Result of a single reconciliation call
type Outcome struct {
	Intention *model.Intention

	// False when the authoritative status wasn't approved and
	// processing stopped after recording the payment id
	Approved bool

	Renewed bool

	// Set on the new payment path
	Migration *MigrationReport
}

// Per intention summary of the asset migration, used for logging and
// alerting only, never returned to the payment provider
type MigrationReport struct {
	Moved    int `json:"moved"`
	Skipped  int `json:"skipped"`
	NotFound int `json:"not_found"`
	Errors   int `json:"errors"`
	Total    int `json:"total"`
}

// Published to Redis after a successful approval or renewal
type ApprovalEvent struct {
	IntentionId string    `json:"intention_id"`
	TemplateId  string    `json:"template_id"`
	PaymentId   string    `json:"payment_id"`
	Operation   Operation `json:"operation"`
	ExpiresIn   time.Time `json:"expires_in"`
}

func (self *ApprovalEvent) MarshalBinary() ([]byte, error) {
	return json.Marshal(self)
}
