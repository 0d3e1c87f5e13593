package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for aocboard.
// Running it without a subcommand performs a download.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aocboard",
		Short: "Download Advent of Code private leaderboards as JSON",
		Long: `aocboard opens the private leaderboard page of Advent of Code in a browser,
finds every "[View]" link and saves the JSON data of each leaderboard under json/<year>/.

The first run opens a visible browser window: log in and go to the private
leaderboards page. The session is then saved to cookies.json and reused, so later
runs need no interaction.`,
		Version:       getVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runDownloadCmd,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging (same as DEBUG=1)")

	cmd.AddCommand(NewDownloadCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
