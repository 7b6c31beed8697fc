package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/aclauto/internal/orders"
)

// CarOrder is one sale transaction request moving through the order
// lifecycle. TrackingCode and FinalPrice stay empty until the order is
// approved into PENDING_PAYMENT and are set exactly once.
type CarOrder struct {
	BaseModel
	TrackingCode string `gorm:"index" json:"tracking_code,omitempty"`

	BuyerName  string `json:"buyer_name"`
	NationalID string `json:"national_id"`
	Phone      string `json:"phone"`
	City       string `json:"city"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`

	CarName     string            `json:"car_name"`
	ConditionID uuid.UUID         `gorm:"type:uuid;index" json:"condition_id"`
	Condition   *CarSaleCondition `gorm:"foreignKey:ConditionID" json:"condition,omitempty"`
	// ConditionSummary is an immutable snapshot of the condition's terms at
	// creation time. Later edits to the condition must not rewrite it.
	ConditionSummary string `json:"condition_summary"`
	SelectedColor    string `json:"selected_color"`

	ProposedPrice decimal.Decimal  `gorm:"type:numeric(14,0)" json:"proposed_price"`
	FinalPrice    *decimal.Decimal `gorm:"type:numeric(14,0)" json:"final_price"`

	Status           orders.Status    `gorm:"type:varchar(32);index" json:"status"`
	UserNotes        string           `json:"user_notes"`
	AdminNotes       string           `json:"admin_notes"`
	RejectReason     string           `json:"reject_reason,omitempty"`
	PaidAmount       *decimal.Decimal `gorm:"type:numeric(14,0)" json:"paid_amount,omitempty"`
	PaymentNote      string           `json:"payment_note,omitempty"`
	DeliveryDeadline *LocalTime       `gorm:"type:timestamp" json:"delivery_deadline,omitempty"`

	CreatedBy uuid.UUID `gorm:"type:uuid;index" json:"created_by"`
	User      *User     `gorm:"foreignKey:CreatedBy" json:"user,omitempty"`
}

// RequiredDeposit is the amount a payment proof must match exactly:
// the admin-set final price once present, the proposed price otherwise.
func (o *CarOrder) RequiredDeposit() decimal.Decimal {
	if o.FinalPrice != nil {
		return *o.FinalPrice
	}
	return o.ProposedPrice
}
