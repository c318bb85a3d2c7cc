package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command for the donna CLI.
var rootCmd = &cobra.Command{
	Use:   "donna",
	Short: "Conversational assistant for your Google Calendar",
	Long: `Donna turns plain language into calendar actions: adding events,
checking your schedule, and cancelling appointments, with a confirmation
before anything changes.

Run the API server with "donna serve", sign in with "donna login", then
talk to it with "donna chat" or "donna voice".`,
	SilenceUsage: true,
}

// Execute is the main entry point for the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newVoiceCmd())
	rootCmd.AddCommand(newCalendarsCmd())
}
