package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pricescanner/aggregator/internal/matching"
	"github.com/pricescanner/aggregator/internal/pipeline"
	"github.com/pricescanner/aggregator/internal/rates"
	"github.com/pricescanner/aggregator/internal/search"
	"github.com/pricescanner/aggregator/internal/types"
	"github.com/pricescanner/aggregator/internal/vendors"
	"github.com/pricescanner/aggregator/internal/watchlist"
)

var (
	searchVendors     []string
	searchCurrency    string
	searchCountry     string
	searchSort        string
	searchMinPrice    float64
	searchMaxPrice    float64
	searchMaxShipDays int
	searchCluster     bool
	searchOutput      string
	searchInteractive bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search marketplaces and compare prices",
	Long: `Search all enabled marketplaces for a product and print the combined,
deduplicated result list sorted by converted price. Prices are shown in the
display currency; offers whose currency could not be converted are marked.

Interactive mode (-i) reads queries from stdin and re-searches as you type,
debounced the way the web UI does it.`,
	Example: `  pricescanner search "wireless mouse"
  pricescanner search "usb-c hub" --vendors amazon,ebay --currency EUR
  pricescanner search "ssd 2tb" --cluster --sort priceAsc
  pricescanner search -i`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringSliceVar(&searchVendors, "vendors", nil, "Vendors to query (default all)")
	searchCmd.Flags().StringVar(&searchCurrency, "currency", "", "Display currency (default from config)")
	searchCmd.Flags().StringVar(&searchCountry, "country", "", "Delivery country (default from config)")
	searchCmd.Flags().StringVar(&searchSort, "sort", "priceAsc", "Sort mode: priceAsc, priceDesc, or rating")
	searchCmd.Flags().Float64Var(&searchMinPrice, "min-price", 0, "Minimum converted price")
	searchCmd.Flags().Float64Var(&searchMaxPrice, "max-price", 0, "Maximum converted price")
	searchCmd.Flags().IntVar(&searchMaxShipDays, "max-ship-days", 0, "Maximum estimated shipping days")
	searchCmd.Flags().BoolVar(&searchCluster, "cluster", false, "Group listings of the same product")
	searchCmd.Flags().StringVar(&searchOutput, "output", "table", "Output format: table or json")
	searchCmd.Flags().BoolVarP(&searchInteractive, "interactive", "i", false, "Read queries from stdin with live re-search")
}

func runSearch(cmd *cobra.Command, args []string) error {
	if !searchInteractive && len(args) == 0 {
		return fmt.Errorf("query argument required unless --interactive is set")
	}

	a, err := buildApp(cmd.Context())
	if err != nil {
		return err
	}

	if searchInteractive {
		return runInteractiveSearch(a)
	}
	return runOneSearch(a, args[0])
}

// buildSearchSession assembles session state from flags and config
func buildSearchSession(a *app, query string) (types.Session, error) {
	session := types.Session{
		Query:    strings.TrimSpace(query),
		Currency: a.cfg.Search.Currency,
		Country:  a.cfg.Search.Country,
		Cluster:  searchCluster,
		Page:     1,
		PageSize: a.cfg.Backend.PageSize,
	}

	if searchCurrency != "" {
		session.Currency = strings.ToUpper(searchCurrency)
	}
	if searchCountry != "" {
		session.Country = strings.ToUpper(searchCountry)
	}

	switch searchSort {
	case "", string(types.SortPriceAsc):
		session.Sort = types.SortPriceAsc
	case string(types.SortPriceDesc):
		session.Sort = types.SortPriceDesc
	case string(types.SortRating):
		session.Sort = types.SortRating
	default:
		return session, fmt.Errorf("invalid sort mode: %s", searchSort)
	}

	if len(searchVendors) == 0 {
		session.Vendors = vendors.DefaultEnabled()
	} else {
		for _, raw := range searchVendors {
			slug := strings.ToLower(strings.TrimSpace(raw))
			if !vendors.IsValid(slug) {
				return session, fmt.Errorf("invalid vendor: %s", raw)
			}
			session.Vendors = append(session.Vendors, slug)
		}
	}

	if searchMinPrice > 0 {
		session.MinPrice = types.Float64Ptr(searchMinPrice)
	}
	if searchMaxPrice > 0 {
		session.MaxPrice = types.Float64Ptr(searchMaxPrice)
	}
	if searchMaxShipDays > 0 {
		session.MaxShipDays = types.IntPtr(searchMaxShipDays)
	}

	return session, nil
}

func runOneSearch(a *app, query string) error {
	session, err := buildSearchSession(a, query)
	if err != nil {
		return err
	}

	ctx := context.Background()
	pools := a.coordinator.Search(ctx, session)
	table := a.rates.Table(ctx)
	price := rates.PriceIn(session.Currency, table)

	if session.Cluster {
		groups := pipeline.BuildGroups(session, pools, table, matching.HeuristicSigner{})
		if err := printGroups(groups, session.Currency, price); err != nil {
			return err
		}
		return refreshWatchesAfterSearch(a, flattenGroups(groups), session.Currency, table)
	}

	results := pipeline.BuildResults(session, pools, table)
	if err := printOffers(results, session.Currency, price); err != nil {
		return err
	}
	return refreshWatchesAfterSearch(a, results, session.Currency, table)
}

// runInteractiveSearch reads queries line by line and re-searches after
// a short debounce, the same coordination the web UI applies to
// keystrokes.
func runInteractiveSearch(a *app) error {
	delay := time.Duration(a.cfg.Search.DebounceMs) * time.Millisecond
	debouncer := search.NewDebouncer(delay)
	defer debouncer.Stop()

	fmt.Println("Type a query and press enter (empty line quits):")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			break
		}
		debouncer.Trigger(func() {
			if err := runOneSearch(a, query); err != nil {
				fmt.Fprintf(os.Stderr, "search failed: %v\n", err)
			}
		})
	}

	return scanner.Err()
}

// refreshWatchesAfterSearch evaluates watches against fresh results and
// prints any newly triggered alerts
func refreshWatchesAfterSearch(a *app, offers []types.Offer, currency string, table *types.RateTable) error {
	price := watchlist.PriceFunc(rates.PriceIn(currency, table))
	notifications, err := a.watches.Refresh(context.Background(), offers, price)
	if err != nil {
		return fmt.Errorf("watch refresh failed: %w", err)
	}
	for _, n := range notifications {
		fmt.Printf("ALERT: %s at %.2f %s on %s\n", n.Title, n.Price, currency, n.Vendor)
	}
	return nil
}

func flattenGroups(groups []types.ProductGroup) []types.Offer {
	var offers []types.Offer
	for _, g := range groups {
		offers = append(offers, g.Offers...)
	}
	return offers
}

func printOffers(offers []types.Offer, currency string, price func(types.Offer) float64) error {
	if searchOutput == "json" {
		return json.NewEncoder(os.Stdout).Encode(offers)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "VENDOR\tPRICE (%s)\tRATING\tSHIP\tTITLE\n", currency)
	for _, o := range offers {
		fmt.Fprintf(w, "%s\t%.2f\t%.1f\t%dd\t%s\n", o.Vendor, price(o), o.Rating, o.ShipDays, truncate(o.Title, 60))
	}
	fmt.Fprintf(w, "\n%d offers\n", len(offers))
	return w.Flush()
}

func printGroups(groups []types.ProductGroup, currency string, price func(types.Offer) float64) error {
	if searchOutput == "json" {
		return json.NewEncoder(os.Stdout).Encode(groups)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, g := range groups {
		fmt.Fprintf(w, "%s\t(%d listings)\n", truncate(g.Title, 60), len(g.Offers))
		for _, o := range g.Offers {
			fmt.Fprintf(w, "  %s\t%.2f %s\t%.1f\t%dd\n", o.Vendor, price(o), currency, o.Rating, o.ShipDays)
		}
	}
	fmt.Fprintf(w, "\n%d products\n", len(groups))
	return w.Flush()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
