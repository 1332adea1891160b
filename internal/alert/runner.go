// Package alert ties the forecast, icon and notification components into
// the single linear pipeline of a run: fetch hourly forecast, select the
// next-hour window, decide rain or no-rain, resolve the icon, send exactly
// one message.
package alert

import (
	"context"
	"log/slog"

	"rainalert/internal/config"
	"rainalert/internal/forecast"
	"rainalert/internal/notify"
	"rainalert/internal/types"
)

// ForecastFetcher retrieves the hourly forecast for a point.
type ForecastFetcher interface {
	Hourly(ctx context.Context, lat, lon float64) ([]forecast.HourlyEntry, error)
}

// IconResolver maps an icon identifier to a local file, downloading on miss.
type IconResolver interface {
	Resolve(ctx context.Context, iconID string) (string, error)
}

// Notifier delivers the single outbound message of a run.
type Notifier interface {
	Send(ctx context.Context, n notify.Notification) error
}

// Runner executes one rain check. All dependencies are injected; Runner
// holds no mutable state across calls.
type Runner struct {
	forecasts ForecastFetcher
	icons     IconResolver
	notifier  Notifier
	clock     types.Clock
	logger    *slog.Logger
	opts      config.Options
}

// NewRunner wires a Runner from its dependencies.
func NewRunner(
	forecasts ForecastFetcher,
	icons IconResolver,
	notifier Notifier,
	clock types.Clock,
	logger *slog.Logger,
	opts config.Options,
) *Runner {
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		forecasts: forecasts,
		icons:     icons,
		notifier:  notifier,
		clock:     clock,
		logger:    logger,
		opts:      opts,
	}
}

// Run performs one check-and-notify cycle.
//
// Failure semantics follow the contract: forecast and notification failures
// are fatal and propagate; an icon failure is logged and the message is
// sent without an attachment. In dry-run mode the decision is logged and
// neither the icon download nor the notification POST is performed.
func (r *Runner) Run(ctx context.Context) error {
	entries, err := r.forecasts.Hourly(ctx, r.opts.Lat, r.opts.Lon)
	if err != nil {
		return err
	}

	selected := forecast.SelectWindow(entries, r.clock.Now())
	for _, entry := range selected {
		if len(entry.Weather) > 0 {
			r.logger.Debug("inspecting condition",
				"main", entry.Weather[0].Main,
				"description", entry.Weather[0].Description,
				"icon", entry.Weather[0].Icon,
			)
		}
	}

	decision := forecast.Decide(selected)
	r.logger.Info("decision made",
		"message", decision.Message,
		"icon", decision.IconID,
		"raining", decision.Raining,
		"window", len(selected),
	)

	if r.opts.DryRun {
		r.logger.Info("dry run: skipping icon resolution and notification")
		return nil
	}

	var attachmentPath string
	if decision.IconID != "" {
		path, err := r.icons.Resolve(ctx, decision.IconID)
		if err != nil {
			// Non-fatal: send without an attachment.
			r.logger.Error("failed to resolve icon", "icon", decision.IconID, "error", err)
		} else {
			attachmentPath = path
		}
	}

	if err := r.notifier.Send(ctx, notify.Notification{
		Message:        decision.Message,
		AttachmentPath: attachmentPath,
	}); err != nil {
		return err
	}

	r.logger.Info("notification sent", "has_attachment", attachmentPath != "")
	return nil
}
