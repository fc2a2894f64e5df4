package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events <shipment-id>",
	Short: "View recorded tracking events for a shipment",
	Args:  cobra.ExactArgs(1),
	RunE:  runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	_, formatter, client, err := initializeClient()
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		err = fmt.Errorf("invalid shipment ID: %s", args[0])
		formatter.PrintError(err)
		return err
	}

	events, err := client.GetEvents(id)
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	return formatter.PrintEvents(events)
}
