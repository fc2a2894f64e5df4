package cmd

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	cliapi "courier-tracking/internal/cli"
)

var (
	serverURL string
	format    string
	quiet     bool
	noColor   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "courier-tracker",
	Short: "CLI client for the courier tracking API",
	Long: `Courier Tracker CLI looks up shipments through the tracking API
server, manages a persisted watch list and shows recorded tracking events.`,
	Version: "1.0.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	fang.Execute(context.Background(), rootCmd)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", getEnvOrDefault("COURIER_TRACKER_SERVER", "http://localhost:8080"), "API server address")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (minimal output)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", os.Getenv("NO_COLOR") != "", "Disable color output")
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(envVar, defaultVal string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultVal
}

// initializeClient sets up configuration, formatter, and API client
func initializeClient() (*cliapi.Config, *cliapi.OutputFormatter, *cliapi.Client, error) {
	config, err := cliapi.LoadConfig(serverURL, format, quiet)
	if err != nil {
		return nil, nil, nil, err
	}

	formatter := cliapi.NewOutputFormatterWithColor(config.Format, config.Quiet, noColor)
	client := cliapi.NewClientWithTimeout(config.ServerURL, config.RequestTimeout)

	return config, formatter, client, nil
}
