package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/atharvakonge/paper-trader/internal/apperrs"
	"github.com/atharvakonge/paper-trader/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustApply(t *testing.T, pos models.Position, side models.Side, qty, price string) models.Position {
	t.Helper()
	next, err := Apply(pos, side, d(qty), d(price))
	if err != nil {
		t.Fatalf("Apply(%s %s @ %s) unexpected error: %v", side, qty, price, err)
	}
	return next
}

func assertHolding(t *testing.T, p models.Position, qty, avg, realized string) {
	t.Helper()
	if !p.Qty.Equal(d(qty)) {
		t.Errorf("qty: expected %s, got %s", qty, p.Qty)
	}
	if !p.AvgCost.Equal(d(avg)) {
		t.Errorf("avgCost: expected %s, got %s", avg, p.AvgCost)
	}
	if !p.RealizedPnL.Equal(d(realized)) {
		t.Errorf("realizedPnL: expected %s, got %s", realized, p.RealizedPnL)
	}
}

func TestApply_WorkedExample(t *testing.T) {
	p := models.Position{Symbol: "AAPL"}

	p = mustApply(t, p, models.SideBuy, "10", "100")
	assertHolding(t, p, "10", "100", "0")

	p = mustApply(t, p, models.SideBuy, "10", "200")
	assertHolding(t, p, "20", "150", "0")

	p = mustApply(t, p, models.SideSell, "5", "250")
	assertHolding(t, p, "15", "150", "500")

	p = mustApply(t, p, models.SideSell, "15", "100")
	assertHolding(t, p, "0", "0", "-250")
}

func TestApply_SellMoreThanHeld(t *testing.T) {
	start := models.Position{Symbol: "MSFT", Qty: d("3"), AvgCost: d("50"), RealizedPnL: d("12")}

	got, err := Apply(start, models.SideSell, d("3.5"), d("60"))
	if !errors.Is(err, apperrs.ErrInsufficientHolding) {
		t.Fatalf("expected ErrInsufficientHolding, got %v", err)
	}

	var ih *apperrs.InsufficientHoldingError
	if !errors.As(err, &ih) {
		t.Fatalf("expected *InsufficientHoldingError, got %T", err)
	}
	if !ih.Held.Equal(d("3")) || !ih.Requested.Equal(d("3.5")) || ih.Symbol != "MSFT" {
		t.Errorf("unexpected error detail: %+v", ih)
	}
	assertHolding(t, got, "3", "50", "12")
}

func TestApply_SellFromEmptyHolding(t *testing.T) {
	_, err := Apply(models.Position{Symbol: "TSLA"}, models.SideSell, d("1"), d("10"))

	var ih *apperrs.InsufficientHoldingError
	if !errors.As(err, &ih) {
		t.Fatalf("expected *InsufficientHoldingError, got %v", err)
	}
	if !ih.Held.IsZero() {
		t.Errorf("expected held 0, got %s", ih.Held)
	}
}

func TestApply_BuyAfterCloseTakesNewPrice(t *testing.T) {
	p := models.Position{Symbol: "AMZN"}
	p = mustApply(t, p, models.SideBuy, "4", "180")
	p = mustApply(t, p, models.SideSell, "4", "190")
	assertHolding(t, p, "0", "0", "40")

	p = mustApply(t, p, models.SideBuy, "2", "123.45")
	assertHolding(t, p, "2", "123.45", "40")
}

func TestApply_PartialSellKeepsAverage(t *testing.T) {
	p := models.Position{Symbol: "GOOGL", Qty: d("7"), AvgCost: d("140.5")}
	p = mustApply(t, p, models.SideSell, "2", "100")
	assertHolding(t, p, "5", "140.5", "-81")
}

func TestApply_BuyAverageMatchesIncrementalRecomputation(t *testing.T) {
	buys := []struct{ qty, price string }{
		{"3", "101.37"}, {"0.5", "99.99"}, {"12", "250"}, {"7.25", "13.3333"}, {"1", "0.01"},
	}

	p := models.Position{Symbol: "NVDA"}
	qty, avg := decimal.Zero, decimal.Zero
	for _, b := range buys {
		p = mustApply(t, p, models.SideBuy, b.qty, b.price)

		if qty.IsZero() {
			avg = d(b.price)
		} else {
			avg = qty.Mul(avg).Add(d(b.qty).Mul(d(b.price))).Div(qty.Add(d(b.qty)))
		}
		qty = qty.Add(d(b.qty))

		if !p.AvgCost.Equal(avg) {
			t.Fatalf("after buy %s @ %s: expected avg %s, got %s", b.qty, b.price, avg, p.AvgCost)
		}
	}
	if !p.Qty.Equal(qty) {
		t.Errorf("expected qty %s, got %s", qty, p.Qty)
	}
}

func TestApply_BuyAverageIsWeightedMean(t *testing.T) {
	p := models.Position{Symbol: "IBM"}
	p = mustApply(t, p, models.SideBuy, "1", "10")
	p = mustApply(t, p, models.SideBuy, "3", "20")
	p = mustApply(t, p, models.SideBuy, "4", "5")
	// (10 + 60 + 20) / 8
	assertHolding(t, p, "8", "11.25", "0")
}

func TestApply_RealizedPnLIsAdditive(t *testing.T) {
	start := models.Position{Symbol: "AAPL", Qty: d("20"), AvgCost: d("150")}

	split := mustApply(t, start, models.SideSell, "6", "175.5")
	split = mustApply(t, split, models.SideSell, "9", "175.5")

	single := mustApply(t, start, models.SideSell, "15", "175.5")

	if !split.RealizedPnL.Equal(single.RealizedPnL) {
		t.Errorf("expected split sells to realize %s, got %s", single.RealizedPnL, split.RealizedPnL)
	}
	if !split.Qty.Equal(single.Qty) || !split.AvgCost.Equal(single.AvgCost) {
		t.Errorf("split and single sells diverged: %+v vs %+v", split, single)
	}
}

func TestApply_SameRepeatedPriceKeepsAverage(t *testing.T) {
	p := models.Position{Symbol: "AAPL"}
	for i := 0; i < 25; i++ {
		p = mustApply(t, p, models.SideBuy, "1", "187.23")
	}
	assertHolding(t, p, "25", "187.23", "0")
}

func TestApply_UnknownSide(t *testing.T) {
	_, err := Apply(models.Position{}, models.Side("HOLD"), d("1"), d("1"))
	if !errors.Is(err, apperrs.ErrBadSide) {
		t.Errorf("expected ErrBadSide, got %v", err)
	}
}
