package rates

import (
	"context"
	"math"
	"testing"
	"time"

	"remit-wallet-go/internal/models"
)

// sequence cycles through fixed draws.
type sequence struct {
	values []float64
	next   int
}

func (s *sequence) Float64() float64 {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

var tuesdayNoon = time.Date(2025, 3, 11, 12, 0, 0, 0, time.UTC)

func testConfig() models.RateFeedConfig {
	return models.RateFeedConfig{
		UpdateInterval:   time.Hour,
		MaxDeviation:     0.10,
		MaxTickMovement:  0.03,
		BusinessDayStart: 8,
		BusinessDayEnd:   17,
	}
}

func testCurrencies() []models.CurrencyInfo {
	return []models.CurrencyInfo{
		{Code: models.PeggedCurrency, BaseRate: 1, Volatility: 0},
		{Code: "NGN", BaseRate: 1532.50, Volatility: 2.0},
		{Code: "KES", BaseRate: 129.5, Volatility: 1.5},
		{Code: "EUR", BaseRate: 0.92, Volatility: 0.5},
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestFeed_InitialRatesAreBaseRates(t *testing.T) {
	feed := NewFeed(testConfig(), testCurrencies(), WithClock(fixedClock(tuesdayNoon)))

	for _, c := range testCurrencies() {
		if got := feed.Rate(c.Code); got != c.BaseRate {
			t.Errorf("Expected %s rate %v, got %v", c.Code, c.BaseRate, got)
		}
	}
	if !feed.LastUpdated().Equal(tuesdayNoon) {
		t.Errorf("Expected last updated %v, got %v", tuesdayNoon, feed.LastUpdated())
	}
}

func TestFeed_RatesStayWithinMaxDeviation(t *testing.T) {
	cfg := testConfig()
	// Let a single tick move far enough that only the deviation clamp holds it
	cfg.MaxTickMovement = 0.5
	currencies := testCurrencies()
	for i := range currencies {
		currencies[i].Volatility *= 50
	}

	draws := []float64{0.999, 0.001, 0.5, 0.75, 0.0, 0.9999}
	clock := tuesdayNoon
	feed := NewFeed(cfg, currencies,
		WithRandom(&sequence{values: draws}),
		WithClock(func() time.Time { return clock }))

	sawUpperBound := false
	for i := 0; i < 500; i++ {
		clock = clock.Add(37 * time.Minute)
		feed.Tick()
		for _, c := range currencies {
			live := feed.Rate(c.Code)
			deviation := math.Abs(live-c.BaseRate) / c.BaseRate
			if deviation > cfg.MaxDeviation+1e-12 {
				t.Fatalf("Tick %d: %s deviated %.4f from base", i, c.Code, deviation)
			}
			if c.Code == "NGN" && math.Abs(live-c.BaseRate*1.1) < 1e-9 {
				sawUpperBound = true
			}
		}
	}
	if !sawUpperBound {
		t.Error("Expected NGN to be pinned to the upper bound at least once")
	}
}

func TestFeed_TickMovementIsClamped(t *testing.T) {
	cfg := testConfig()
	currencies := []models.CurrencyInfo{{Code: "NGN", BaseRate: 1000, Volatility: 100}}
	feed := NewFeed(cfg, currencies,
		WithRandom(&sequence{values: []float64{0.99999}}),
		WithClock(fixedClock(tuesdayNoon)))

	feed.Tick()
	if got := feed.Rate("NGN"); math.Abs(got-1030) > 1e-9 {
		t.Errorf("Expected rate clamped to 1030, got %v", got)
	}
}

func TestFeed_WeekendAndOffHoursDampen(t *testing.T) {
	currencies := []models.CurrencyInfo{{Code: "KES", BaseRate: 100, Volatility: 1}}
	draws := []float64{1, 1} // maximal positive noise and time term

	moveAt := func(at time.Time) float64 {
		feed := NewFeed(testConfig(), currencies,
			WithRandom(&sequence{values: draws}),
			WithClock(fixedClock(at)))
		feed.Tick()
		return feed.Rate("KES") - 100
	}

	weekdayBusiness := moveAt(tuesdayNoon)
	weekdayNight := moveAt(time.Date(2025, 3, 11, 22, 0, 0, 0, time.UTC))
	saturdayBusiness := moveAt(time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC))

	if math.Abs(weekdayBusiness-0.7) > 1e-9 {
		t.Errorf("Expected business-hours move 0.7, got %v", weekdayBusiness)
	}
	if math.Abs(weekdayNight-0.55) > 1e-9 {
		t.Errorf("Expected off-hours move 0.55, got %v", weekdayNight)
	}
	if math.Abs(saturdayBusiness-0.35) > 1e-9 {
		t.Errorf("Expected weekend move 0.35, got %v", saturdayBusiness)
	}
}

func TestFeed_PeggedCurrencyStaysNeutral(t *testing.T) {
	feed := NewFeed(testConfig(), testCurrencies(),
		WithRandom(&sequence{values: []float64{0.0, 0.999, 0.3}}),
		WithClock(fixedClock(tuesdayNoon)))

	for i := 0; i < 1000; i++ {
		feed.Tick()
		if got := feed.ChangeIndicator(models.PeggedCurrency); got != models.ChangeNeutral {
			t.Fatalf("Tick %d: expected neutral, got %s", i, got)
		}
		if got := feed.Rate(models.PeggedCurrency); got != 1 {
			t.Fatalf("Tick %d: expected pegged rate 1, got %v", i, got)
		}
	}
}

func TestFeed_UnknownCurrencyFallsBackToOne(t *testing.T) {
	feed := NewFeed(testConfig(), testCurrencies())

	if got := feed.Rate("XYZ"); got != 1 {
		t.Errorf("Expected 1 for unknown currency, got %v", got)
	}
	if got := feed.ChangeIndicator("XYZ"); got != models.ChangeNeutral {
		t.Errorf("Expected neutral for unknown currency, got %s", got)
	}
	if _, ok := feed.Quote("XYZ"); ok {
		t.Error("Expected no quote for unknown currency")
	}
}

func TestFeed_CrossRate(t *testing.T) {
	feed := NewFeed(testConfig(), testCurrencies())

	tests := []struct {
		from, to string
		want     float64
	}{
		{models.PeggedCurrency, "NGN", 1532.50},
		{"KES", models.PeggedCurrency, 1 / 129.5},
		{"KES", "NGN", 1532.50 / 129.5},
		{"XYZ", "EUR", 0.92},
	}
	for _, tt := range tests {
		if got := feed.CrossRate(tt.from, tt.to); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("CrossRate(%s, %s): expected %v, got %v", tt.from, tt.to, tt.want, got)
		}
	}
}

func TestFeed_ChangeIndicatorBand(t *testing.T) {
	tests := []struct {
		pct  float64
		want models.ChangeDirection
	}{
		{0.05, models.ChangeNeutral},
		{-0.1, models.ChangeNeutral},
		{0.11, models.ChangeUp},
		{-2, models.ChangeDown},
	}
	for _, tt := range tests {
		if got := direction(tt.pct); got != tt.want {
			t.Errorf("direction(%v): expected %s, got %s", tt.pct, tt.want, got)
		}
	}
}

func TestFeed_RatesReturnsCopy(t *testing.T) {
	feed := NewFeed(testConfig(), testCurrencies())

	snapshot := feed.Rates()
	snapshot["NGN"] = 1
	if got := feed.Rate("NGN"); got != 1532.50 {
		t.Errorf("Expected feed to be unaffected by snapshot mutation, got %v", got)
	}
}

func TestFeed_StartIsIdempotentAndStopFreezes(t *testing.T) {
	cfg := testConfig()
	cfg.UpdateInterval = time.Millisecond
	feed := NewFeed(cfg, testCurrencies())

	ctx := context.Background()
	feed.Start(ctx)
	feed.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	feed.Stop()
	feed.Stop()

	frozen := feed.Rates()
	at := feed.LastUpdated()
	time.Sleep(10 * time.Millisecond)
	if !feed.LastUpdated().Equal(at) {
		t.Error("Expected rates to stop changing after Stop")
	}
	for code, rate := range feed.Rates() {
		if frozen[code] != rate {
			t.Errorf("Expected %s to stay at %v, got %v", code, frozen[code], rate)
		}
	}
}
