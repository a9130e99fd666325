package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var ratesRefresh bool

// ratesCmd represents the rates command
var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Show the exchange-rate table used for conversion",
	Long: `Show the cached exchange-rate table. The table is refreshed from the
configured source when it is older than twelve hours; --refresh forces a
fetch now.`,
	RunE: runRates,
}

func init() {
	rootCmd.AddCommand(ratesCmd)
	ratesCmd.Flags().BoolVar(&ratesRefresh, "refresh", false, "Force a fetch before printing")
}

func runRates(cmd *cobra.Command, args []string) error {
	a, err := buildApp(context.Background())
	if err != nil {
		return err
	}

	ctx := context.Background()
	if ratesRefresh {
		if err := a.rates.Refresh(ctx); err != nil {
			return fmt.Errorf("rate refresh failed: %w", err)
		}
	}

	table := a.rates.Table(ctx)

	codes := make([]string, 0, len(table.Rates))
	for code := range table.Rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Base: %s\tFetched: %s\n\n", table.Base, table.FetchedAt.Format("2006-01-02 15:04"))
	fmt.Fprintln(w, "CODE\tRATE")
	for _, code := range codes {
		fmt.Fprintf(w, "%s\t%.4f\n", code, table.Rates[code])
	}
	return w.Flush()
}
