// Command validate runs a local eGRID file through the same decoding and
// cleaning the upload endpoint applies, then reports what would survive.
// Useful for checking a workbook before uploading it to a live deployment.
//
// Usage:
//
//	go run ./cmd/validate -file egrid2023_data.xlsx
//	go run ./cmd/validate -file cleaned_gen23.csv -top CA
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/powerviz/plant-data-api/internal/domain"
	"github.com/powerviz/plant-data-api/internal/tabular"
)

func main() {
	file := flag.String("file", "", "path to a .csv or .xlsx generator file")
	sheet := flag.String("sheet", "GEN23", "worksheet name for xlsx input")
	top := flag.String("top", "", "also print the top plants for this state code")
	limit := flag.Int("limit", 10, "number of plants to print with -top")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(*file, *sheet, *top, *limit); err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		os.Exit(1)
	}
}

func run(path, sheet, top string, limit int) error {
	if !tabular.Supported(path) {
		return domain.ErrUnsupportedFileType
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	table, err := tabular.Decode(path, data, sheet)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	cleaned, err := domain.Normalize(table)
	if err != nil {
		return fmt.Errorf("clean: %w", err)
	}

	records := domain.ToRecords(cleaned)
	dropped := len(table.Rows) - len(records)

	fmt.Printf("=== %s ===\n", path)
	fmt.Printf("Input:    %d columns, %d rows\n", len(table.Columns), len(table.Rows))
	fmt.Printf("Cleaned:  %d rows (%d dropped)\n", len(records), dropped)
	fmt.Printf("Would store as: %s\n", tabular.CleanedObjectName(path))

	printStateBreakdown(records)

	if top != "" {
		printTopPlants(records, top, limit)
	}

	if len(records) == 0 {
		return domain.ErrNoUsableRows
	}
	fmt.Println("\nFile is uploadable.")
	return nil
}

func printStateBreakdown(records []domain.GenerationRecord) {
	counts := map[string]int{}
	for i := range records {
		counts[records[i].State]++
	}

	states := domain.DistinctStates(records)
	fmt.Printf("States (%d):", len(states))

	sort.Slice(states, func(i, j int) bool { return counts[states[i]] > counts[states[j]] })
	for _, s := range states {
		fmt.Printf(" %s=%d", s, counts[s])
	}
	fmt.Println()
}

func printTopPlants(records []domain.GenerationRecord, state string, limit int) {
	plants := domain.TopPlants(records, state, limit)
	fmt.Printf("\nTop %d plants in %s:\n", limit, state)
	if len(plants) == 0 {
		fmt.Println("  (none)")
		return
	}
	for i, p := range plants {
		fmt.Printf("  %2d. %-40s ORISPL=%s  %.3f MWh\n", i+1, p.Name, p.ID, p.NetGeneration)
	}
}
