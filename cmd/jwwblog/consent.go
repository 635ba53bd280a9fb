package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/joywithwealth/jwwblog"
	"github.com/joywithwealth/jwwblog/consent"
)

func consentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consent",
		Short: "Inspect the consent ledger",
	}
	cmd.AddCommand(consentStatsCmd())
	cmd.AddCommand(consentRecentCmd())
	return cmd
}

func openLedger() (*consent.Ledger, error) {
	cfg, err := jwwblog.LoadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.ConsentLedgerPath == "" {
		return nil, errors.New("CONSENT_LEDGER_PATH is not set")
	}
	return consent.NewLedger(cfg.ConsentLedgerPath)
}

func consentStatsCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize banner decisions per day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be positive, got %d", days)
			}
			ledger, err := openLedger()
			if err != nil {
				return err
			}
			defer ledger.Close()

			to := time.Now().UTC()
			s, err := ledger.Summary(cmd.Context(), to.AddDate(0, 0, -days), to)
			if err != nil {
				return err
			}
			return writeSummary(cmd, s)
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "number of days to include")
	return cmd
}

func writeSummary(cmd *cobra.Command, s *consent.Summary) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Period:\t%s\n", s.Period)
	fmt.Fprintf(w, "Decisions:\t%d\n", s.Total)
	fmt.Fprintf(w, "Accept all:\t%d (%.1f%%)\n", s.Accepted, s.AcceptRate()*100)
	fmt.Fprintf(w, "Essential only:\t%d\n", s.Essential)
	if len(s.Daily) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "DATE\tACCEPT\tESSENTIAL")
		for _, d := range s.Daily {
			fmt.Fprintf(w, "%s\t%d\t%d\n", d.Date, d.Accepted, d.Essential)
		}
	}
	return w.Flush()
}

func consentRecentCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the latest banner decisions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := openLedger()
			if err != nil {
				return err
			}
			defer ledger.Close()

			records, err := ledger.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return writeRecords(cmd, records)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of records to show")
	return cmd
}

func writeRecords(cmd *cobra.Command, records []consent.Record) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DECIDED\tCHOICE\tDEVICE\tVISITOR\tPATH")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.DecidedAt.UTC().Format(time.RFC3339), r.Choice, r.Device, r.VisitorHash, r.Path)
	}
	return w.Flush()
}
