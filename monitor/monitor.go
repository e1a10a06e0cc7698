// Package monitor runs the continuous price-watching loop over the tracked
// player registry and flags buying opportunities.
package monitor

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/use-agent/futmarket/config"
	"github.com/use-agent/futmarket/models"
	"github.com/use-agent/futmarket/output"
	"github.com/use-agent/futmarket/registry"
)

// Extractor is the extraction engine the monitor drives. Satisfied by
// *extractor.Extractor.
type Extractor interface {
	Extract(ctx context.Context, url string) *models.ExtractionResult
}

// Trend classifies the cheapest-sale movement since the previous cycle.
type Trend string

const (
	TrendNew  Trend = "new"
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// Recommendation marks a player worth buying this cycle.
type Recommendation struct {
	Reason string  `json:"reason"` // "margin" or "drop"
	Margin float64 `json:"margin,omitempty"`
	Drop   float64 `json:"drop,omitempty"`
}

// Observation is the per-player outcome of one monitoring cycle.
type Observation struct {
	Player         registry.Player          `json:"player"`
	Result         *models.ExtractionResult `json:"result"`
	Previous       *PricePoint              `json:"previous,omitempty"`
	Trend          Trend                    `json:"trend,omitempty"`
	Recommendation *Recommendation          `json:"recommendation,omitempty"`
}

// CycleReport summarizes one pass over the enabled players.
type CycleReport struct {
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
	Players      int           `json:"players"`
	Succeeded    int           `json:"succeeded"`
	Failed       int           `json:"failed"`
	Observations []Observation `json:"observations"`
}

// Monitor repeatedly extracts prices for every enabled player.
type Monitor struct {
	extractor Extractor
	reg       *registry.Registry
	history   *History
	cfg       config.MonitorConfig
	limiter   *rate.Limiter
	logger    *slog.Logger
}

func New(ex Extractor, reg *registry.Registry, cfg config.MonitorConfig, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	delay := cfg.RequestDelay
	if delay <= 0 {
		delay = time.Second
	}
	return &Monitor{
		extractor: ex,
		reg:       reg,
		history:   NewHistory(),
		cfg:       cfg,
		limiter:   rate.NewLimiter(rate.Every(delay), 1),
		logger:    logger,
	}
}

// History exposes the price history, mainly for the API layer.
func (m *Monitor) History() *History { return m.history }

// Run executes cycles until ctx is cancelled. A webhook event is delivered
// after each cycle when configured.
func (m *Monitor) Run(ctx context.Context) error {
	interval := m.cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	for {
		report, err := m.RunCycle(ctx)
		if err != nil {
			return err
		}

		if m.cfg.WebhookURL != "" {
			output.DeliverAsync(m.cfg.WebhookURL, m.cfg.WebhookSecret, &output.Event{
				Type:      "cycle.completed",
				Timestamp: time.Now().Unix(),
				Data:      report,
			})
		}

		m.logger.Info("cycle completed",
			"players", report.Players,
			"succeeded", report.Succeeded,
			"failed", report.Failed,
			"duration", report.Duration,
		)

		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunCycle extracts every enabled player once, paced by the request delay,
// and returns the cycle report. It stops early if ctx is cancelled.
func (m *Monitor) RunCycle(ctx context.Context) (*CycleReport, error) {
	players := m.reg.Enabled()
	report := &CycleReport{
		StartedAt: time.Now(),
		Players:   len(players),
	}

	for _, p := range players {
		if err := m.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		obs := m.observe(ctx, p)
		report.Observations = append(report.Observations, obs)
		if obs.Result.Success {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}

	report.Duration = time.Since(report.StartedAt)
	return report, nil
}

func (m *Monitor) observe(ctx context.Context, p registry.Player) Observation {
	obs := Observation{Player: p}
	obs.Result = m.extractor.Extract(ctx, p.URL)

	if !obs.Result.Success || obs.Result.Fields.CheapestSale == nil {
		if obs.Result.Error != nil {
			m.logger.Warn("monitored extraction failed",
				"player", p.Name,
				"url", p.URL,
				"code", obs.Result.Error.Code,
			)
		}
		return obs
	}

	cheapest := *obs.Result.Fields.CheapestSale
	if prev, ok := m.history.Record(p.URL, cheapest); ok {
		obs.Previous = &prev
		obs.Trend = classifyTrend(prev.Cheapest, cheapest)
	} else {
		obs.Trend = TrendNew
	}

	obs.Recommendation = m.recommend(cheapest, obs.Previous, obs.Result.Fields)
	if obs.Recommendation != nil {
		m.logger.Info("buy opportunity",
			"player", p.Name,
			"cheapest", cheapest,
			"reason", obs.Recommendation.Reason,
		)
	}
	return obs
}

func classifyTrend(prev, current int) Trend {
	switch {
	case current > prev:
		return TrendUp
	case current < prev:
		return TrendDown
	default:
		return TrendFlat
	}
}

// recommend flags a buy when the cheapest sale sits far enough under the
// market reference price, or when the price dropped sharply since the last
// cycle while still leaving a profit.
func (m *Monitor) recommend(cheapest int, prev *PricePoint, fields models.MarketFields) *Recommendation {
	reference := 0
	if fields.AverageBIN != nil {
		reference = *fields.AverageBIN
	} else if fields.EAAverage != nil {
		reference = *fields.EAAverage
	}

	if reference > 0 && cheapest < reference {
		margin := float64(reference-cheapest) / float64(reference)
		if margin >= m.cfg.ProfitMargin {
			return &Recommendation{Reason: "margin", Margin: margin}
		}
	}

	if prev != nil && prev.Cheapest > 0 && cheapest < prev.Cheapest {
		drop := float64(prev.Cheapest-cheapest) / float64(prev.Cheapest)
		if drop >= m.cfg.DropThreshold && reference > cheapest {
			return &Recommendation{Reason: "drop", Drop: drop}
		}
	}

	return nil
}
