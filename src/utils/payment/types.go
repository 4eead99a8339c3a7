package payment

const (
	StatusApproved = "approved"
)

// Authoritative payment state fetched from the provider.
// The webhook body only carries a payment id hint, never a trusted status.
type Payment struct {
	Id                string `json:"id"`
	Status            string `json:"status"`
	ExternalReference string `json:"external_reference"`
}

// Webhook notification body
type Notification struct {
	Type string `json:"type"`
	Data struct {
		Id string `json:"id"`
	} `json:"data"`
}
