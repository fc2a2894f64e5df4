package cmd

import (
	"github.com/spf13/cobra"
)

var carriersCmd = &cobra.Command{
	Use:   "carriers",
	Short: "List supported carriers",
	Args:  cobra.NoArgs,
	RunE:  runCarriers,
}

func init() {
	rootCmd.AddCommand(carriersCmd)
}

func runCarriers(cmd *cobra.Command, args []string) error {
	_, formatter, client, err := initializeClient()
	if err != nil {
		return err
	}

	infos, err := client.GetCarriers()
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	return formatter.PrintCarriers(infos)
}
