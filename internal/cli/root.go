package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "polly",
	Short:        "Bitbucket Server merge bot",
	Long:         "Polly polls your open Bitbucket Server pull requests and merges the ones carrying a trigger directive in their description or comments.",
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	rootCmd.AddCommand(newPollCmd())
	rootCmd.AddCommand(newServeCmd())
	return rootCmd.Execute()
}
