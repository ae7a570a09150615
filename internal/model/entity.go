package model

// Entity types used by the workflows. The store accepts any type tag.
const (
	EntityTypeProduct       = "product"
	EntityTypeCustomer      = "customer"
	EntityTypeOrderSession  = "order_session"
	EntityTypeOrderItem     = "order_item"
	EntityTypePaymentMethod = "payment_method"
)

type Entity struct {
	BaseModel
	OrganizationID string `db:"organization_id" json:"organization_id"`
	EntityType     string `db:"entity_type" json:"entity_type"`
	EntityName     string `db:"entity_name" json:"entity_name"`
	EntityCode     string `db:"entity_code" json:"entity_code"`
	IsActive       bool   `db:"is_active" json:"is_active"`
}

type DynamicAttribute struct {
	BaseModel
	OrganizationID string    `db:"organization_id" json:"organization_id"`
	EntityID       string    `db:"entity_id" json:"entity_id"`
	FieldName      string    `db:"field_name" json:"field_name"`
	FieldValue     string    `db:"field_value" json:"field_value"`
	FieldType      FieldType `db:"field_type" json:"field_type"`
	IsEncrypted    bool      `db:"is_encrypted" json:"is_encrypted"`
}

// Value decodes the stored text into its typed form.
func (a DynamicAttribute) Value() (FieldValue, error) {
	return ParseFieldValue(a.FieldType, a.FieldValue)
}

// Attributes indexes an entity's attributes by field name.
type Attributes map[string]FieldValue

// NewAttributes decodes rows into an index, skipping rows whose text does not parse.
func NewAttributes(rows []DynamicAttribute) Attributes {
	attrs := make(Attributes, len(rows))
	for _, row := range rows {
		v, err := row.Value()
		if err != nil {
			continue
		}
		attrs[row.FieldName] = v
	}
	return attrs
}

func (a Attributes) Number(field string) float64 {
	v, ok := a[field]
	if !ok {
		return 0
	}
	n, err := v.Number()
	if err != nil {
		return 0
	}
	return n
}

func (a Attributes) Text(field string) string {
	v, ok := a[field]
	if !ok {
		return ""
	}
	return v.String()
}

func (a Attributes) Bool(field string) bool {
	v, ok := a[field]
	if !ok {
		return false
	}
	b, err := v.Bool()
	if err != nil {
		return false
	}
	return b
}
