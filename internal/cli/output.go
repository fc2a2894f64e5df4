package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"courier-tracking/internal/carriers"
	"courier-tracking/internal/database"
	"courier-tracking/internal/handlers"
)

var statusStyles = map[string]lipgloss.Style{
	string(carriers.StatusDelivered):      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	string(carriers.StatusOutForDelivery): lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
	string(carriers.StatusInTransit):      lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	string(carriers.StatusAtPickup):       lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
	string(carriers.StatusUnknown):        lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
}

// OutputFormatter handles different output formats
type OutputFormatter struct {
	format   string
	quiet    bool
	useColor bool
}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter(format string, quiet bool) *OutputFormatter {
	return NewOutputFormatterWithColor(format, quiet, false)
}

// NewOutputFormatterWithColor creates a formatter with explicit color control
func NewOutputFormatterWithColor(format string, quiet, noColor bool) *OutputFormatter {
	return &OutputFormatter{
		format:   format,
		quiet:    quiet,
		useColor: !noColor && isatty.IsTerminal(os.Stdout.Fd()),
	}
}

func (f *OutputFormatter) styleStatus(status string) string {
	if !f.useColor {
		return status
	}
	if style, ok := statusStyles[status]; ok {
		return style.Render(status)
	}
	return status
}

// PrintTrackResult prints a live lookup result
func (f *OutputFormatter) PrintTrackResult(result *handlers.TrackResponse) error {
	if f.quiet {
		fmt.Println(result.TrackInfo.LatestStatus())
		return nil
	}

	switch f.format {
	case "json":
		return json.NewEncoder(os.Stdout).Encode(result)
	case "table":
		return f.printTrackTable(result)
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

func (f *OutputFormatter) printTrackTable(result *handlers.TrackResponse) error {
	info := result.TrackInfo

	fmt.Printf("Carrier:  %s\n", result.Carrier)
	fmt.Printf("Tracking: %s\n", result.TrackingNumber)
	if info.Sender != nil && info.Sender.Name != nil {
		fmt.Printf("Sender:   %s\n", *info.Sender.Name)
	}
	if info.Recipient != nil && info.Recipient.Name != nil {
		fmt.Printf("To:       %s\n", *info.Recipient.Name)
	}
	fmt.Printf("Status:   %s\n", f.styleStatus(string(info.LatestStatus())))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSTATUS\tLOCATION\tDESCRIPTION")
	for _, e := range info.Events {
		timeStr := "-"
		if e.Time != nil {
			timeStr = e.Time.Format("2006-01-02 15:04")
		}
		location := ""
		if e.Location != nil {
			location = e.Location.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			timeStr, f.styleStatus(string(e.Status.Code)), location, e.Description)
	}
	return w.Flush()
}

// PrintCarriers prints the carrier catalog
func (f *OutputFormatter) PrintCarriers(infos []handlers.CarrierInfo) error {
	if f.quiet {
		for _, info := range infos {
			fmt.Println(info.Code)
		}
		return nil
	}

	switch f.format {
	case "json":
		return json.NewEncoder(os.Stdout).Encode(infos)
	case "table":
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tNAME")
		for _, info := range infos {
			fmt.Fprintf(w, "%s\t%s\n", info.Code, info.Name)
		}
		return w.Flush()
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintShipments prints the persisted watch list
func (f *OutputFormatter) PrintShipments(shipments []database.Shipment) error {
	if f.quiet {
		for _, s := range shipments {
			fmt.Println(s.ID)
		}
		return nil
	}

	switch f.format {
	case "json":
		return json.NewEncoder(os.Stdout).Encode(shipments)
	case "table":
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCARRIER\tTRACKING\tSTATUS\tDESCRIPTION")
		for _, s := range shipments {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				s.ID, s.Carrier, s.TrackingNumber, f.styleStatus(s.Status), s.Description)
		}
		return w.Flush()
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintEvents prints recorded tracking events
func (f *OutputFormatter) PrintEvents(events []database.TrackingEvent) error {
	if f.quiet {
		for _, e := range events {
			fmt.Println(e.ID)
		}
		return nil
	}

	switch f.format {
	case "json":
		return json.NewEncoder(os.Stdout).Encode(events)
	case "table":
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tSTATUS\tLOCATION\tDESCRIPTION")
		for _, e := range events {
			timeStr := "-"
			if e.EventTime != nil {
				timeStr = e.EventTime.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				timeStr, f.styleStatus(e.Status), e.Location, e.Description)
		}
		return w.Flush()
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintSuccess prints a success message
func (f *OutputFormatter) PrintSuccess(message string) {
	if !f.quiet {
		fmt.Printf("✓ %s\n", message)
	}
}

// PrintError prints an error message to stderr
func (f *OutputFormatter) PrintError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
