package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/example/aclauto/internal/models"
)

var (
	ratio90 = decimal.NewFromFloat(0.90)
	ratio94 = decimal.NewFromFloat(0.94)
	ratio95 = decimal.NewFromFloat(0.95)
	ratio97 = decimal.NewFromFloat(0.97)
	ratio98 = decimal.NewFromFloat(0.98)
	two     = decimal.NewFromInt(2)
)

// Band is a suggested price range derived from the market maximum.
type Band struct {
	Low  decimal.Decimal `json:"low"`
	High decimal.Decimal `json:"high"`
}

func (b Band) midpoint() decimal.Decimal {
	return b.Low.Add(b.High).Div(two)
}

// Advisory compares a price against market statistics for the reviewing
// admin. It is informational only and never gates a transition.
type Advisory struct {
	SaleType     string          `json:"sale_type"`
	MarketMax    decimal.Decimal `json:"market_max"`
	OneMonth     *Band           `json:"one_month_band,omitempty"`
	TwoMonth     *Band           `json:"two_month_band,omitempty"`
	WarnOneMonth bool            `json:"warn_one_month"`
	WarnTwoMonth bool            `json:"warn_two_month"`
	Underselling bool            `json:"underselling"`
}

// Advise computes the advisory for a sale type given the model's market
// maximum and the price under review. Returns nil for sale types that carry
// no advisory.
//
// TRANSFER (havaleh) allocations settle in one or two months, so two bands
// are quoted off the market max: [95%, 97%] and [90%, 94%]. A price below
// 98% of a band's midpoint flags underselling for that horizon.
// NEW_MARKET flags underselling below 98% of the market max.
func Advise(saleType string, marketMax, price decimal.Decimal) *Advisory {
	switch saleType {
	case models.SaleTypeTransfer:
		oneMonth := Band{Low: marketMax.Mul(ratio95), High: marketMax.Mul(ratio97)}
		twoMonth := Band{Low: marketMax.Mul(ratio90), High: marketMax.Mul(ratio94)}

		a := &Advisory{
			SaleType:  saleType,
			MarketMax: marketMax,
			OneMonth:  &oneMonth,
			TwoMonth:  &twoMonth,
		}
		a.WarnOneMonth = price.LessThan(oneMonth.midpoint().Mul(ratio98))
		a.WarnTwoMonth = price.LessThan(twoMonth.midpoint().Mul(ratio98))
		a.Underselling = a.WarnOneMonth || a.WarnTwoMonth
		return a

	case models.SaleTypeNewMarket:
		a := &Advisory{SaleType: saleType, MarketMax: marketMax}
		a.Underselling = price.LessThan(marketMax.Mul(ratio98))
		return a
	}

	return nil
}
