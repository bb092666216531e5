package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"delivery-options-backend/internal/model"
	"delivery-options-backend/internal/session"
)

// printOptions prints the timeframes and pickup locations of a session.
func printOptions(out io.Writer, snap session.Snapshot) error {
	fmt.Fprintf(out, "Delivery options for %s %s on %s\n\n",
		snap.Address.Postcode, snap.Address.HouseNumber, model.FormatDate(snap.Address.DeliveryDate))

	if len(snap.Timeframes) == 0 {
		fmt.Fprintln(out, "No timeframes.")
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		if _, err := fmt.Fprintln(w, "#\tDATE\tFROM\tTO\tTYPE"); err != nil {
			return fmt.Errorf("writing table header: %w", err)
		}
		for _, tf := range snap.Timeframes {
			if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", tf.Index, tf.Date, tf.From, tf.To, tf.Type); err != nil {
				return fmt.Errorf("writing table row: %w", err)
			}
		}
		if err := w.Flush(); err != nil {
			return fmt.Errorf("flushing table: %w", err)
		}
	}
	fmt.Fprintln(out)

	slots := []struct {
		label string
		loc   *model.Location
	}{
		{"Pickup", snap.Regular},
		{"Express pickup", snap.Express},
		{"Dispenser", snap.Dispenser},
	}
	for _, s := range slots {
		if s.loc == nil {
			fmt.Fprintf(out, "%-15s -\n", s.label+":")
			continue
		}
		fmt.Fprintf(out, "%-15s %s (%s) %s\n", s.label+":", s.loc.Name, s.loc.Code, formatLocationAddress(s.loc.Address))
	}

	fmt.Fprintf(out, "\nMap markers: %d\n", len(snap.Map.Markers))
	if snap.Selection != nil {
		fmt.Fprintf(out, "Selected:    %s %s (extra cost %.2f)\n", snap.Selection.Type, snap.Selection.Date, snap.Cost)
	}
	return nil
}

func formatLocationAddress(a model.LocationAddress) string {
	var parts []string
	if street := strings.TrimSpace(a.Street + " " + a.HouseNr + a.HouseNrExt); street != "" {
		parts = append(parts, street)
	}
	for _, p := range []string{a.Zipcode, a.City} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
