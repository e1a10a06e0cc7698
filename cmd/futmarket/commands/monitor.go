package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/use-agent/futmarket/monitor"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Continuously watch tracked players and flag buy opportunities",
	Long: `Monitor repeatedly extracts prices for every enabled player, compares
each cheapest-sale price against the previous cycle and against the market
reference (average BIN), and flags players selling far enough below either.

The registry's settings block controls the cycle interval, request delay,
drop threshold, and target profit margin. Stop with Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}

		// Registry settings override the environment defaults.
		settings := reg.Settings()
		if settings.MonitoringInterval > 0 {
			cfg.Monitor.Interval = time.Duration(settings.MonitoringInterval) * time.Second
		}
		if settings.DelayBetweenRequests > 0 {
			cfg.Monitor.RequestDelay = time.Duration(settings.DelayBetweenRequests) * time.Second
		}
		if settings.PriceDropThreshold > 0 {
			cfg.Monitor.DropThreshold = settings.PriceDropThreshold
		}
		if settings.TargetProfitMargin > 0 {
			cfg.Monitor.ProfitMargin = settings.TargetProfitMargin
		}
		if settings.HeadlessMode {
			cfg.Browser.Headless = true
		}

		engine, session, err := newEngine()
		if err != nil {
			return err
		}
		defer session.Close()

		m := monitor.New(engine, reg, cfg.Monitor, nil)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(os.Stderr, "monitoring %d players every %s (Ctrl-C to stop)\n",
			len(reg.Enabled()), cfg.Monitor.Interval)

		if err := m.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}
