package order

// Dynamic attribute names of order_session entities.
const (
	AttrStatus         = "status"
	AttrCustomerID     = "customer_id"
	AttrStaffID        = "staff_id"
	AttrSource         = "source"
	AttrServiceType    = "service_type"
	AttrTableNumber    = "table_number"
	AttrSubtotal       = "subtotal"
	AttrTaxAmount      = "tax_amount"
	AttrDiscountAmount = "discount_amount"
	AttrTotalAmount    = "total_amount"
	AttrLoyaltyPoints  = "loyalty_points_earned"
	AttrLineCounter    = "line_counter"
	AttrTransactionID  = "transaction_id"
)

// Dynamic attribute names of order_item entities.
const (
	AttrSessionID           = "session_id"
	AttrProductID           = "product_id"
	AttrQuantity            = "quantity"
	AttrBasePrice           = "base_price"
	AttrUnitPrice           = "unit_price"
	AttrLineAmount          = "line_amount"
	AttrLineOrder           = "line_order"
	AttrSize                = "size"
	AttrSpecialInstructions = "special_instructions"
)
