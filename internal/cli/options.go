package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"delivery-options-backend/internal/model"
	"delivery-options-backend/internal/session"
	"delivery-options-backend/internal/upstream"
)

type optionsFlags struct {
	postcode    string
	houseNumber string
	address     string
	date        string
	timeout     time.Duration
}

func newOptionsCmd() *cobra.Command {
	f := &optionsFlags{}
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Show delivery options for an address",
		Long:  "Open a session for the address, wait for the timeframes and locations to load, and print the selectable options.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptions(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.postcode, "postcode", "", "shipping postcode")
	cmd.Flags().StringVar(&f.houseNumber, "house-number", "", "shipping house number")
	cmd.Flags().StringVar(&f.address, "address", "", "full shipping address (default: postcode and house number)")
	cmd.Flags().StringVar(&f.date, "date", "", "delivery date as dd-mm-yyyy (default: tomorrow)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 30*time.Second, "how long to wait for the upstream")
	_ = cmd.MarkFlagRequired("postcode")
	_ = cmd.MarkFlagRequired("house-number")

	return cmd
}

func runOptions(cmd *cobra.Command, f *optionsFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Upstream.BaseURL == "" {
		return fmt.Errorf("no upstream configured, set --upstream or upstream.base_url")
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	date := time.Now().AddDate(0, 0, 1)
	if f.date != "" {
		if date, err = model.ParseDate(f.date); err != nil {
			return err
		}
	}
	addr := model.Address{
		Postcode:     f.postcode,
		HouseNumber:  f.houseNumber,
		FullAddress:  f.address,
		DeliveryDate: date,
	}
	if addr.FullAddress == "" {
		addr.FullAddress = f.postcode + " " + f.houseNumber
	}

	s, err := session.New("cli", addr, cfg, upstream.NewClient(cfg.Upstream, log), nil, log)
	if err != nil {
		return err
	}
	if err := s.Start(); err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), f.timeout)
	defer cancel()
	if err := s.WaitIdle(ctx); err != nil {
		return fmt.Errorf("waiting for upstream: %w", err)
	}

	snap, err := s.Snapshot()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, snap)
	}
	return printOptions(out, snap)
}
