package models

import "github.com/shopspring/decimal"

// CarPriceStats is a read-only market aggregate per car model, produced by an
// external scraping service and consumed only for the price advisory.
type CarPriceStats struct {
	BaseModel
	CarModel    string          `gorm:"uniqueIndex" json:"car_model"`
	MinPrice    decimal.Decimal `gorm:"type:numeric(14,0)" json:"min_price"`
	AvgPrice    decimal.Decimal `gorm:"type:numeric(14,0)" json:"avg_price"`
	MaxPrice    decimal.Decimal `gorm:"type:numeric(14,0)" json:"max_price"`
	SampleCount int             `json:"sample_count"`
	CollectedAt LocalTime       `gorm:"type:timestamp" json:"collected_at"`
}
