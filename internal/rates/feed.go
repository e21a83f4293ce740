/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package rates

import (
	"context"
	"math"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"remit-wallet-go/internal/models"

	"go.uber.org/zap"
)

const (
	noiseAmplitude        = 0.005
	businessHoursScale    = 0.002
	offHoursScale         = 0.0005
	weekendDampening      = 0.5
	neutralBandPercentage = 0.1
)

// RandomSource yields uniform values in [0, 1).
type RandomSource interface {
	Float64() float64
}

type randomFunc func() float64

func (f randomFunc) Float64() float64 { return f() }

// Provider is the read side of the feed consumed by transfers.
type Provider interface {
	Rates() map[string]float64
	Currency(code string) (models.CurrencyInfo, bool)
}

var _ Provider = (*Feed)(nil)

// Feed simulates live exchange rates relative to the pegged currency. Each
// tick perturbs every rate around its fixed base rate and clamps the result
// to the configured maximum deviation.
type Feed struct {
	mu          sync.RWMutex
	codes       []string
	currencies  map[string]models.CurrencyInfo
	live        map[string]float64
	lastUpdated time.Time

	interval         time.Duration
	maxDeviation     float64
	maxTickMovement  float64
	businessDayStart int
	businessDayEnd   int

	random RandomSource
	now    func() time.Time

	started  bool
	stopOnce sync.Once
	stopChan chan struct{}
	doneChan chan struct{}
}

// Option customizes a Feed.
type Option func(*Feed)

// WithRandom replaces the default math/rand source.
func WithRandom(r RandomSource) Option {
	return func(f *Feed) { f.random = r }
}

// WithClock replaces time.Now; the hour and weekday drive the fluctuation.
func WithClock(now func() time.Time) Option {
	return func(f *Feed) { f.now = now }
}

// NewFeed builds a feed with live rates initialized to the base rates.
func NewFeed(cfg models.RateFeedConfig, currencies []models.CurrencyInfo, opts ...Option) *Feed {
	f := &Feed{
		currencies:       make(map[string]models.CurrencyInfo, len(currencies)),
		live:             make(map[string]float64, len(currencies)),
		interval:         cfg.UpdateInterval,
		maxDeviation:     cfg.MaxDeviation,
		maxTickMovement:  cfg.MaxTickMovement,
		businessDayStart: cfg.BusinessDayStart,
		businessDayEnd:   cfg.BusinessDayEnd,
		random:           randomFunc(rand.Float64),
		now:              time.Now,
		stopChan:         make(chan struct{}),
		doneChan:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}

	for _, c := range currencies {
		if _, dup := f.currencies[c.Code]; !dup {
			f.codes = append(f.codes, c.Code)
		}
		f.currencies[c.Code] = c
		f.live[c.Code] = c.BaseRate
	}
	sort.Strings(f.codes)
	f.lastUpdated = f.now()

	return f
}

// Start begins the periodic update loop. Calling it again is a no-op.
func (f *Feed) Start(ctx context.Context) {
	f.mu.Lock()
	if f.started {
		f.mu.Unlock()
		return
	}
	f.started = true
	f.mu.Unlock()

	go f.updateLoop(ctx)

	zap.L().Info("Rate feed started",
		zap.Duration("update_interval", f.interval),
		zap.Int("currencies", len(f.codes)))
}

// Stop halts the update loop; rates remain queryable at their last value.
func (f *Feed) Stop() {
	f.mu.RLock()
	started := f.started
	f.mu.RUnlock()
	if !started {
		return
	}

	f.stopOnce.Do(func() {
		close(f.stopChan)
		<-f.doneChan
		zap.L().Info("Rate feed stopped")
	})
}

func (f *Feed) updateLoop(ctx context.Context) {
	defer close(f.doneChan)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.Tick()
		case <-f.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Tick performs one update of every live rate.
func (f *Feed) Tick() {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	for _, code := range f.codes {
		info := f.currencies[code]
		fluctuation := f.fluctuation(now, info.Volatility)
		f.live[code] = f.clampToBase(info.BaseRate*(1+fluctuation), info.BaseRate)
	}
	f.lastUpdated = now

	zap.L().Debug("Rates updated", zap.Time("at", now))
}

// fluctuation is the relative move for one currency on this tick.
func (f *Feed) fluctuation(now time.Time, volatility float64) float64 {
	noise := (f.random.Float64()*2 - 1) * noiseAmplitude

	scale := offHoursScale
	if hour := now.Hour(); hour >= f.businessDayStart && hour < f.businessDayEnd {
		scale = businessHoursScale
	}
	timeTerm := (f.random.Float64()*2 - 1) * scale

	total := noise + timeTerm
	if day := now.Weekday(); day == time.Saturday || day == time.Sunday {
		total *= weekendDampening
	}
	total *= volatility

	return math.Max(-f.maxTickMovement, math.Min(f.maxTickMovement, total))
}

func (f *Feed) clampToBase(rate, base float64) float64 {
	lower := base * (1 - f.maxDeviation)
	upper := base * (1 + f.maxDeviation)
	return math.Max(lower, math.Min(upper, rate))
}

// Rates returns a snapshot of the live rates.
func (f *Feed) Rates() map[string]float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()

	snapshot := make(map[string]float64, len(f.live))
	for code, rate := range f.live {
		snapshot[code] = rate
	}
	return snapshot
}

// Rate returns the live rate for code, or 1 when the currency is unknown.
func (f *Feed) Rate(code string) float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return rateOrOne(f.live, code)
}

// CrossRate converts between two currencies through the pegged unit.
func (f *Feed) CrossRate(from, to string) float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()

	switch {
	case from == models.PeggedCurrency:
		return rateOrOne(f.live, to)
	case to == models.PeggedCurrency:
		return 1 / rateOrOne(f.live, from)
	default:
		return rateOrOne(f.live, to) / rateOrOne(f.live, from)
	}
}

// ChangePercentage is (live - base) / base expressed in percent.
func (f *Feed) ChangePercentage(code string) float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.changePercentage(code)
}

func (f *Feed) changePercentage(code string) float64 {
	info, ok := f.currencies[code]
	if !ok || info.BaseRate == 0 {
		return 0
	}
	return (f.live[code] - info.BaseRate) / info.BaseRate * 100
}

// ChangeIndicator reports the direction of the live rate against its base.
func (f *Feed) ChangeIndicator(code string) models.ChangeDirection {
	return direction(f.ChangePercentage(code))
}

func direction(percentage float64) models.ChangeDirection {
	switch {
	case percentage > neutralBandPercentage:
		return models.ChangeUp
	case percentage < -neutralBandPercentage:
		return models.ChangeDown
	default:
		return models.ChangeNeutral
	}
}

// LastUpdated returns when the rates last changed.
func (f *Feed) LastUpdated() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.lastUpdated
}

// Currency returns the reference data for a supported currency.
func (f *Feed) Currency(code string) (models.CurrencyInfo, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	info, ok := f.currencies[code]
	return info, ok
}

// Quote returns the live view of one currency.
func (f *Feed) Quote(code string) (models.RateQuote, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	info, ok := f.currencies[code]
	if !ok {
		return models.RateQuote{}, false
	}
	return f.quote(info), true
}

// Quotes returns every currency's live view ordered by code.
func (f *Feed) Quotes() []models.RateQuote {
	f.mu.RLock()
	defer f.mu.RUnlock()

	quotes := make([]models.RateQuote, 0, len(f.codes))
	for _, code := range f.codes {
		quotes = append(quotes, f.quote(f.currencies[code]))
	}
	return quotes
}

func (f *Feed) quote(info models.CurrencyInfo) models.RateQuote {
	pct := f.changePercentage(info.Code)
	return models.RateQuote{
		Currency:         info.Code,
		Rate:             f.live[info.Code],
		BaseRate:         info.BaseRate,
		ChangePercentage: pct,
		Direction:        direction(pct),
		UpdatedAt:        f.lastUpdated,
	}
}

func rateOrOne(rates map[string]float64, code string) float64 {
	if rate, ok := rates[code]; ok {
		return rate
	}
	return 1
}
