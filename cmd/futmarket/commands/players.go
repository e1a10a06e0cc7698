package commands

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/use-agent/futmarket/search"
)

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "Manage the tracked-player registry",
}

var playersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked players",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		players := reg.Players()
		if len(players) == 0 {
			fmt.Fprintln(os.Stdout, "no tracked players")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tENABLED\tNOTES\tURL")
		for _, p := range players {
			fmt.Fprintf(w, "%s\t%v\t%s\t%s\n", p.Name, p.Enabled, p.Notes, p.URL)
		}
		return w.Flush()
	},
}

var playersAddNotes string

var playersAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Track a player by market page URL",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		player, err := reg.Add(args[0], args[1], playersAddNotes)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "tracking %s: %s\n", player.Name, player.URL)
		return nil
	},
}

var playersRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Stop tracking a player",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		return reg.Remove(args[0])
	},
}

var playersEnableCmd = &cobra.Command{
	Use:   "enable <name>",
	Short: "Enable a player for batch runs and monitoring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		return reg.SetEnabled(args[0], true)
	},
}

var playersDisableCmd = &cobra.Command{
	Use:   "disable <name>",
	Short: "Disable a player without removing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		return reg.SetEnabled(args[0], false)
	},
}

var playersSearchLimit int

var playersSearchCmd = &cobra.Command{
	Use:   "search <name>",
	Short: "Search futbin for players matching a name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := search.NewClient(cfg.Search, nil)
		candidates, err := client.SearchPlayers(cmd.Context(), args[0], playersSearchLimit)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			fmt.Fprintln(os.Stdout, "no matches")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tRATING\tVERSION\tURL")
		for _, c := range candidates {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Name, c.Rating, c.Version, c.URL)
		}
		return w.Flush()
	},
}

var playersImportCmd = &cobra.Command{
	Use:   "import <page>",
	Short: "Import every player from one futbin listing page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("page must be a number: %q", args[0])
		}

		reg, err := openRegistry()
		if err != nil {
			return err
		}

		client := search.NewClient(cfg.Search, nil)
		candidates, err := client.FetchPlayersPage(cmd.Context(), page)
		if err != nil {
			return err
		}

		added := 0
		for _, c := range candidates {
			if _, err := reg.Add(c.Name, c.URL, c.Version); err != nil {
				continue // duplicates are expected on re-import
			}
			added++
		}
		fmt.Fprintf(os.Stdout, "imported %d of %d players from page %d\n", added, len(candidates), page)
		return nil
	},
}

func init() {
	playersAddCmd.Flags().StringVar(&playersAddNotes, "notes", "", "free-form note stored with the player")
	playersSearchCmd.Flags().IntVar(&playersSearchLimit, "limit", 10, "maximum number of results")

	playersCmd.AddCommand(playersListCmd, playersAddCmd, playersRemoveCmd,
		playersEnableCmd, playersDisableCmd, playersSearchCmd, playersImportCmd)
	rootCmd.AddCommand(playersCmd)
}
