package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/example/aclauto/internal/models"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestAdviseTransferBands(t *testing.T) {
	a := Advise(models.SaleTypeTransfer, dec(1_000_000), dec(900_000))
	if a == nil {
		t.Fatal("expected an advisory for TRANSFER")
	}

	if !a.OneMonth.Low.Equal(dec(950_000)) || !a.OneMonth.High.Equal(dec(970_000)) {
		t.Errorf("one-month band = [%s, %s], want [950000, 970000]", a.OneMonth.Low, a.OneMonth.High)
	}
	if !a.TwoMonth.Low.Equal(dec(900_000)) || !a.TwoMonth.High.Equal(dec(940_000)) {
		t.Errorf("two-month band = [%s, %s], want [900000, 940000]", a.TwoMonth.Low, a.TwoMonth.High)
	}

	// 900000 < 960000*0.98 = 940800 and 900000 < 920000*0.98 = 901600
	if !a.WarnOneMonth {
		t.Error("price 900000 must flag the one-month horizon")
	}
	if !a.WarnTwoMonth {
		t.Error("price 900000 must flag the two-month horizon")
	}
	if !a.Underselling {
		t.Error("underselling must be set when any horizon warns")
	}
}

func TestAdviseTransferFairPrice(t *testing.T) {
	// 960000 >= 940800 and 960000 >= 901600: no warnings.
	a := Advise(models.SaleTypeTransfer, dec(1_000_000), dec(960_000))
	if a.WarnOneMonth || a.WarnTwoMonth || a.Underselling {
		t.Errorf("price 960000 must not warn, got %+v", a)
	}
}

func TestAdviseTransferBoundary(t *testing.T) {
	// Exactly 98% of the two-month midpoint: not strictly below, no warning.
	a := Advise(models.SaleTypeTransfer, dec(1_000_000), dec(901_600))
	if a.WarnTwoMonth {
		t.Error("price equal to the two-month threshold must not warn")
	}
	if !a.WarnOneMonth {
		t.Error("901600 is still under the one-month threshold of 940800")
	}
}

func TestAdviseNewMarket(t *testing.T) {
	a := Advise(models.SaleTypeNewMarket, dec(1_000_000), dec(979_999))
	if a == nil {
		t.Fatal("expected an advisory for NEW_MARKET")
	}
	if a.OneMonth != nil || a.TwoMonth != nil {
		t.Error("NEW_MARKET quotes no bands")
	}
	if !a.Underselling {
		t.Error("979999 < 980000 must flag underselling")
	}

	if a := Advise(models.SaleTypeNewMarket, dec(1_000_000), dec(980_000)); a.Underselling {
		t.Error("980000 equals the threshold and must not flag")
	}
}

func TestAdviseOtherSaleTypes(t *testing.T) {
	if a := Advise(models.SaleTypePreSale, dec(1_000_000), dec(1)); a != nil {
		t.Errorf("PRE_SALE carries no advisory, got %+v", a)
	}
	if a := Advise("", dec(1_000_000), dec(1)); a != nil {
		t.Errorf("unknown sale type carries no advisory, got %+v", a)
	}
}
