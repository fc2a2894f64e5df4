package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"courier-tracking/internal/handlers"
)

var addDescription string

var addCmd = &cobra.Command{
	Use:   "add <carrier> <tracking-number>",
	Short: "Add a shipment to the watch list",
	Args:  cobra.ExactArgs(2),
	RunE:  runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "Shipment description")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	_, formatter, client, err := initializeClient()
	if err != nil {
		return err
	}

	shipment, err := client.CreateShipment(handlers.CreateShipmentRequest{
		Carrier:        args[0],
		TrackingNumber: args[1],
		Description:    addDescription,
	})
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	formatter.PrintSuccess(fmt.Sprintf("Added shipment %d (%s %s)",
		shipment.ID, shipment.Carrier, shipment.TrackingNumber))
	return nil
}
