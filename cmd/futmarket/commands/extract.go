package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Extract market prices from one player page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, session, err := newEngine()
		if err != nil {
			return err
		}
		defer session.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Extractor.LoadTimeout)
		defer cancel()

		result := engine.Extract(ctx, args[0])

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(out))

		if !result.Success {
			return fmt.Errorf("extraction failed: %s", result.Error.Message)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
