package models

import (
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Sale types a condition can be published under.
const (
	SaleTypeTransfer  = "TRANSFER"   // havaleh: transferable allocation right
	SaleTypeNewMarket = "NEW_MARKET" // brand-new vehicle at market price
	SaleTypePreSale   = "PRE_SALE"
)

// Condition publication states.
const (
	ConditionActive   = "ACTIVE"
	ConditionArchived = "ARCHIVED"
)

// CarSaleCondition is one sellable batch of a car model: sale terms plus the
// number of units available. StockQuantity is mutated only by the order
// lifecycle's reserve/release paths; the CRUD surface never decrements it.
type CarSaleCondition struct {
	BaseModel
	CarModel       string          `gorm:"index" json:"car_model"`
	ModelYear      string          `json:"model_year"`
	SaleType       string          `gorm:"type:varchar(16)" json:"sale_type"`
	PayType        string          `json:"pay_type"`
	DocumentStatus string          `json:"document_status"`
	Colors         pq.StringArray  `gorm:"type:text[]" json:"colors"`
	DeliveryTime   string          `json:"delivery_time"`
	InitialDeposit decimal.Decimal `gorm:"type:numeric(14,0)" json:"initial_deposit"`
	StockQuantity  int             `gorm:"check:stock_quantity >= 0" json:"stock_quantity"`
	Status         string          `gorm:"type:varchar(16);default:ACTIVE" json:"status"`
}

// Summary renders the denormalized snapshot text stored on orders. It freezes
// the condition's terms at order-creation time even if this record is later
// edited.
func (c *CarSaleCondition) Summary() string {
	return fmt.Sprintf("%s %s | %s / %s | docs: %s | delivery: %s | deposit: %s",
		c.CarModel, c.ModelYear, c.SaleType, c.PayType,
		c.DocumentStatus, c.DeliveryTime, c.InitialDeposit.StringFixed(0))
}
