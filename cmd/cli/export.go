package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/pricescanner/aggregator/internal/pipeline"
	"github.com/pricescanner/aggregator/internal/rates"
)

var exportFile string

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <query>",
	Short: "Search and export the results to an XLSX file",
	Long: `Run a search with the same flags as the search command and write the
deduplicated result list to an Excel workbook, one offer per row with the
converted price alongside the vendor's native price.`,
	Example: `  pricescanner export "wireless mouse" -o mouse.xlsx
  pricescanner export "ssd 2tb" --vendors amazon,newegg --currency EUR -o ssd.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFile, "out", "o", "results.xlsx", "Output file path")
	exportCmd.Flags().StringSliceVar(&searchVendors, "vendors", nil, "Vendors to query (default all)")
	exportCmd.Flags().StringVar(&searchCurrency, "currency", "", "Display currency (default from config)")
	exportCmd.Flags().StringVar(&searchCountry, "country", "", "Delivery country (default from config)")
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := buildApp(context.Background())
	if err != nil {
		return err
	}

	session, err := buildSearchSession(a, args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	pools := a.coordinator.Search(ctx, session)
	table := a.rates.Table(ctx)
	price := rates.PriceIn(session.Currency, table)

	results := pipeline.BuildResults(session, pools, table)
	if len(results) == 0 {
		return fmt.Errorf("no results for %q", session.Query)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Results"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headers := []string{"Vendor", "Title", fmt.Sprintf("Price (%s)", session.Currency), "Native Price", "Native Currency", "Rating", "Ship Days", "URL"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, o := range results {
		values := []interface{}{o.Vendor, o.Title, price(o), o.Price, o.Currency, o.Rating, o.ShipDays, o.URL}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write row %d: %w", row+2, err)
			}
		}
	}

	if err := f.SaveAs(exportFile); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	fmt.Printf("Wrote %d offers to %s\n", len(results), exportFile)
	return nil
}
