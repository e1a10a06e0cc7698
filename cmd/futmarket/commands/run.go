package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/use-agent/futmarket/models"
	"github.com/use-agent/futmarket/normalize"
	"github.com/use-agent/futmarket/output"
)

var runJSONOut string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract prices for every enabled tracked player once",
	Long: `Run walks the tracked-player registry, extracts market prices for each
enabled player with a polite delay between requests, appends the results to
the registry's CSV file, and prints a summary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		players := reg.Enabled()
		if len(players) == 0 {
			fmt.Fprintln(os.Stderr, "no enabled players; add some with `futmarket players add`")
			return nil
		}

		settings := reg.Settings()
		if settings.HeadlessMode {
			cfg.Browser.Headless = true
		}

		engine, session, err := newEngine()
		if err != nil {
			return err
		}
		defer session.Close()

		delay := time.Duration(settings.DelayBetweenRequests) * time.Second
		records := make([]output.Record, 0, len(players))
		succeeded := 0

		for i, p := range players {
			if i > 0 {
				select {
				case <-time.After(delay):
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Extractor.LoadTimeout)
			result := engine.Extract(ctx, p.URL)
			cancel()

			if result.Success {
				succeeded++
			}
			records = append(records, output.Record{
				Timestamp:      time.Now(),
				ConfiguredName: p.Name,
				Notes:          p.Notes,
				Result:         *result,
			})

			printPlayerLine(p.Name, result)
		}

		csvFile := settings.CSVFilename
		if csvFile == "" {
			csvFile = cfg.Output.CSVFile
		}
		if err := output.AppendCSV(csvFile, records); err != nil {
			return err
		}
		if runJSONOut != "" {
			if err := output.WriteJSON(runJSONOut, records); err != nil {
				return err
			}
		}

		slog.Info("batch completed",
			"players", len(players),
			"succeeded", succeeded,
			"failed", len(players)-succeeded,
			"csv", csvFile,
		)
		fmt.Fprintf(os.Stdout, "\n%d/%d players extracted, results appended to %s\n",
			succeeded, len(players), csvFile)
		return nil
	},
}

func printPlayerLine(name string, result *models.ExtractionResult) {
	if !result.Success {
		msg := "no fields matched"
		if result.Error != nil {
			msg = result.Error.Message
		}
		fmt.Fprintf(os.Stdout, "  %-24s FAILED: %s\n", name, msg)
		return
	}
	fmt.Fprintf(os.Stdout, "  %-24s cheapest %s | avg BIN %s | EA avg %s\n",
		name,
		normalize.FormatPrice(result.Fields.CheapestSale),
		normalize.FormatPrice(result.Fields.AverageBIN),
		normalize.FormatPrice(result.Fields.EAAverage),
	)
}

func init() {
	runCmd.Flags().StringVar(&runJSONOut, "json-out", "", "also write the batch results to a JSON file")
	rootCmd.AddCommand(runCmd)
}
