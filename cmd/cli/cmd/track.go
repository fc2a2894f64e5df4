package cmd

import (
	"github.com/spf13/cobra"
)

var trackCmd = &cobra.Command{
	Use:   "track <carrier> <tracking-number>",
	Short: "Look up a shipment at the carrier",
	Long: `Look up a shipment directly at the carrier's tracking page and print
the normalized result. Use the carriers command to see available codes.`,
	Args: cobra.ExactArgs(2),
	RunE: runTrack,
}

func init() {
	rootCmd.AddCommand(trackCmd)
}

func runTrack(cmd *cobra.Command, args []string) error {
	_, formatter, client, err := initializeClient()
	if err != nil {
		return err
	}

	result, err := client.Track(args[0], args[1])
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	return formatter.PrintTrackResult(result)
}
