package report

import "go.uber.org/atomic"

type ReconcilerErrors struct {
	SignatureRejected     atomic.Uint64 `json:"signature_rejected"`
	MalformedNotification atomic.Uint64 `json:"malformed_notification"`
	PaymentLookupFailure  atomic.Uint64 `json:"payment_lookup_failure"`
	IntentionNotFound     atomic.Uint64 `json:"intention_not_found"`
	DbFailure             atomic.Uint64 `json:"db_failure"`
	FormDataMissing       atomic.Uint64 `json:"form_data_missing"`
	AssetMoveErrors       atomic.Uint64 `json:"asset_move_errors"`
}

type ReconcilerState struct {
	WebhooksReceived  atomic.Uint64 `json:"webhooks_received"`
	WebhooksIgnored   atomic.Uint64 `json:"webhooks_ignored"`
	PaymentsPending   atomic.Uint64 `json:"payments_pending"`
	PaymentsApproved  atomic.Uint64 `json:"payments_approved"`
	PlanRenewals      atomic.Uint64 `json:"plan_renewals"`
	DuplicatePayments atomic.Uint64 `json:"duplicate_payments"`
	AssetsMoved       atomic.Uint64 `json:"assets_moved"`
	AssetsSkipped     atomic.Uint64 `json:"assets_skipped"`
	AssetsNotFound    atomic.Uint64 `json:"assets_not_found"`
}

type ReconcilerReport struct {
	State  ReconcilerState  `json:"state"`
	Errors ReconcilerErrors `json:"errors"`
}
