package dto

type CreateSessionInput struct {
	OrganizationID string
	CustomerID     string
	StaffID        string
	Source         string
	ServiceType    string
	TableNumber    string
	// Preferences is free-form personalization data stored with the session configuration.
	Preferences map[string]any
}

type AddItemInput struct {
	OrganizationID      string
	SessionID           string
	ProductID           string
	Quantity            int
	Modifications       map[string]string
	SpecialInstructions string
}

type PaymentData struct {
	Method    string  `json:"method"`
	Amount    float64 `json:"amount"`
	Reference string  `json:"reference,omitempty"`
}

type ConfirmOrderInput struct {
	OrganizationID string
	SessionID      string
	PaymentData    *PaymentData
}
