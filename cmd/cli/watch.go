package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pricescanner/aggregator/internal/pipeline"
	"github.com/pricescanner/aggregator/internal/rates"
	"github.com/pricescanner/aggregator/internal/types"
	"github.com/pricescanner/aggregator/internal/vendors"
	"github.com/pricescanner/aggregator/internal/watchlist"
)

var (
	watchAddVendors  []string
	watchAddTarget   float64
	watchAddDiscount float64
)

// watchCmd represents the watch command group
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Manage price watches",
	Long: `Manage the price watchlist. A watch tracks a product title across a set
of vendors and triggers when the best matching offer drops below the target
price or falls the configured percentage under its baseline.`,
}

var watchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all watches",
	RunE:  runWatchList,
}

var watchAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a watch for a product title",
	Example: `  pricescanner watch add "wireless mouse x200" --target 19.99
  pricescanner watch add "ssd 2tb" --vendors amazon,newegg --discount 15`,
	Args: cobra.ExactArgs(1),
	RunE: runWatchAdd,
}

var watchRemoveCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a watch",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatchRemove,
}

var watchRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-search every watch and report triggered alerts",
	RunE:  runWatchRefresh,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.AddCommand(watchListCmd)
	watchCmd.AddCommand(watchAddCmd)
	watchCmd.AddCommand(watchRemoveCmd)
	watchCmd.AddCommand(watchRefreshCmd)

	watchAddCmd.Flags().StringSliceVar(&watchAddVendors, "vendors", nil, "Vendors to watch (default all)")
	watchAddCmd.Flags().Float64Var(&watchAddTarget, "target", 0, "Target price trigger")
	watchAddCmd.Flags().Float64Var(&watchAddDiscount, "discount", 0, "Discount percent trigger")
}

func runWatchList(cmd *cobra.Command, args []string) error {
	a, err := buildApp(context.Background())
	if err != nil {
		return err
	}

	watches := a.watches.List()
	if len(watches) == 0 {
		fmt.Println("No watches.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tTARGET\tDISCOUNT\tLAST\tTRIGGERED")
	for _, entry := range watches {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%v\n",
			truncate(entry.ID, 40),
			truncate(entry.Title, 40),
			formatFloatPtr(entry.TargetPrice),
			formatFloatPtr(entry.DiscountPct),
			formatFloatPtr(entry.Last),
			entry.Triggered,
		)
	}
	return w.Flush()
}

func runWatchAdd(cmd *cobra.Command, args []string) error {
	a, err := buildApp(context.Background())
	if err != nil {
		return err
	}

	watchVendors := watchAddVendors
	if len(watchVendors) == 0 {
		watchVendors = vendors.DefaultEnabled()
	} else {
		for i, raw := range watchVendors {
			slug := strings.ToLower(strings.TrimSpace(raw))
			if !vendors.IsValid(slug) {
				return fmt.Errorf("invalid vendor: %s", raw)
			}
			watchVendors[i] = slug
		}
	}

	entry := types.WatchEntry{
		ID:      watchlist.EntryID(args[0], watchVendors),
		Title:   args[0],
		Vendors: watchVendors,
	}
	if watchAddTarget > 0 {
		entry.TargetPrice = types.Float64Ptr(watchAddTarget)
	}
	if watchAddDiscount > 0 {
		entry.DiscountPct = types.Float64Ptr(watchAddDiscount)
	}

	if err := a.watches.Add(context.Background(), entry); err != nil {
		return fmt.Errorf("failed to add watch: %w", err)
	}

	fmt.Printf("Added watch %s\n", entry.ID)
	return nil
}

func runWatchRemove(cmd *cobra.Command, args []string) error {
	a, err := buildApp(context.Background())
	if err != nil {
		return err
	}

	if err := a.watches.Remove(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to remove watch: %w", err)
	}

	fmt.Println("Removed.")
	return nil
}

// runWatchRefresh searches every watched title across its vendor set
// and evaluates all watches against the combined results
func runWatchRefresh(cmd *cobra.Command, args []string) error {
	a, err := buildApp(context.Background())
	if err != nil {
		return err
	}

	ctx := context.Background()
	watches := a.watches.List()
	if len(watches) == 0 {
		fmt.Println("No watches.")
		return nil
	}

	table := a.rates.Table(ctx)
	currency := a.cfg.Search.Currency

	var offers []types.Offer
	for _, entry := range watches {
		session := types.Session{
			Query:    entry.Title,
			Vendors:  entry.Vendors,
			Currency: currency,
			Country:  a.cfg.Search.Country,
			Sort:     types.SortPriceAsc,
		}
		pools := a.coordinator.Search(ctx, session)
		offers = append(offers, pipeline.BuildResults(session, pools, table)...)
	}

	price := watchlist.PriceFunc(rates.PriceIn(currency, table))
	notifications, err := a.watches.Refresh(ctx, offers, price)
	if err != nil {
		return fmt.Errorf("watch refresh failed: %w", err)
	}

	if len(notifications) == 0 {
		fmt.Println("No new alerts.")
		return nil
	}
	for _, n := range notifications {
		fmt.Printf("ALERT: %s at %.2f %s on %s\n", n.Title, n.Price, currency, n.Vendor)
	}
	return nil
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
