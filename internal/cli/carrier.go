package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"delivery-options-backend/internal/carrier"
)

func newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List the carrier shipping methods",
		Args:  cobra.NoArgs,
		RunE:  runMethods,
	}
}

func runMethods(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	current, err := carrier.CurrentMethod(cfg.Carrier.RateType)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, map[string]interface{}{
			"methods": carrier.Methods(),
			"current": current,
		})
	}
	for _, m := range carrier.Methods() {
		marker := " "
		if m == current {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s\n", marker, m)
	}
	return nil
}

func newTrackCmd() *cobra.Command {
	var dest carrier.Destination
	cmd := &cobra.Command{
		Use:   "track <barcode>",
		Short: "Print the track-and-trace link of a shipment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			link := carrier.TrackAndTraceURL(cfg.Carrier.TrackTraceBaseURL, args[0], dest)
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), map[string]string{"barcode": args[0], "url": link})
			}
			fmt.Fprintln(cmd.OutOrStdout(), link)
			return nil
		},
	}
	cmd.Flags().StringVar(&dest.CountryCode, "country", "NL", "destination country code")
	cmd.Flags().StringVar(&dest.Postcode, "postcode", "", "destination postcode")
	return cmd
}
