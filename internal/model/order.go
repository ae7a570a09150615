package model

import "time"

// OrderSession is the cart view of an order_session entity, its attributes and its items.
type OrderSession struct {
	ID                  string        `json:"id"`
	OrganizationID      string        `json:"organization_id"`
	SessionCode         string        `json:"session_code"`
	CustomerID          string        `json:"customer_id,omitempty"`
	StaffID             string        `json:"staff_id,omitempty"`
	Status              SessionStatus `json:"status"`
	Source              string        `json:"source,omitempty"`
	ServiceType         string        `json:"service_type,omitempty"`
	TableNumber         string        `json:"table_number,omitempty"`
	Subtotal            float64       `json:"subtotal"`
	TaxAmount           float64       `json:"tax_amount"`
	DiscountAmount      float64       `json:"discount_amount"`
	TotalAmount         float64       `json:"total_amount"`
	LoyaltyPointsEarned int64         `json:"loyalty_points_earned"`
	TransactionID       string        `json:"transaction_id,omitempty"`
	Items               []OrderItem   `json:"items"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

type OrderItem struct {
	ID                  string            `json:"id"`
	SessionID           string            `json:"session_id"`
	ProductID           string            `json:"product_id"`
	ProductName         string            `json:"product_name"`
	Quantity            int               `json:"quantity"`
	BasePrice           float64           `json:"base_price"`
	UnitPrice           float64           `json:"unit_price"`
	LineAmount          float64           `json:"line_amount"`
	LineOrder           int               `json:"line_order"`
	Modifications       map[string]string `json:"modifications,omitempty"`
	SpecialInstructions string            `json:"special_instructions,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
}

type LineBreakdown struct {
	ItemID      string  `json:"item_id"`
	ProductID   string  `json:"product_id"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
	Tax         float64 `json:"tax"`
	Total       float64 `json:"total"`
	LineOrder   int     `json:"line_order"`
}

type OrderCalculation struct {
	SessionID           string          `json:"session_id"`
	Subtotal            float64         `json:"subtotal"`
	TaxRate             float64         `json:"tax_rate"`
	TaxAmount           float64         `json:"tax_amount"`
	DiscountAmount      float64         `json:"discount_amount"`
	LoyaltyDiscount     float64         `json:"loyalty_discount"`
	TotalAmount         float64         `json:"total_amount"`
	LoyaltyPointsEarned int64           `json:"loyalty_points_earned"`
	Breakdown           []LineBreakdown `json:"breakdown"`
}

type Recommendation struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
	Confidence  float64 `json:"confidence"`
	Reason      string  `json:"reason"`
}
