// Command genmock generates synthetic eGRID-style generator files for manual
// testing of the upload pipeline. Output uses the raw GEN23 mnemonic headers,
// including columns the normalizer discards, so a generated file exercises
// the same cleaning path as a real EPA workbook.
//
// Usage:
//
//	go run ./cmd/genmock -out testdata/gen23_mock.csv -rows 500
//	go run ./cmd/genmock -out testdata/gen23_mock.xlsx -rows 500 -states CA,NY,TX
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var header = []string{
	"SEQGEN23", "PSTATEABB", "PNAME", "ORISPL", "GENID",
	"GENSTAT", "FUELG1", "GENNTAN", "GENYRONL",
}

var fuels = []string{"NG", "BIT", "NUC", "WAT", "SUN", "WND"}

var plantNouns = []string{
	"Creek", "Ridge", "Valley", "Point", "Bend", "Falls", "Mesa", "Harbor",
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path (.csv or .xlsx)")
	rows := flag.Int("rows", 200, "number of generator rows")
	states := flag.String("states", "CA,TX,NY,FL,WA,PA", "comma-separated state codes")
	sheet := flag.String("sheet", "GEN23", "worksheet name for xlsx output")
	seed := flag.Int64("seed", 23, "rng seed for reproducible fixtures")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	stateList := strings.Split(*states, ",")
	rng := rand.New(rand.NewSource(*seed))
	records := generate(rng, *rows, stateList)

	var err error
	switch strings.ToLower(filepath.Ext(*out)) {
	case ".csv":
		err = writeCSV(*out, records)
	case ".xlsx":
		err = writeXLSX(*out, *sheet, records)
	default:
		return fmt.Errorf("output must end in .csv or .xlsx, got %q", *out)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", *out, err)
	}

	log.Printf("wrote %d rows to %s", len(records), *out)
	printStats(records)
	return nil
}

// generate produces raw rows keyed by the GEN23 header. A handful of rows
// get blank or junk GENNTAN values so the fixture also covers the drop path.
func generate(rng *rand.Rand, n int, states []string) [][]string {
	records := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		state := states[rng.Intn(len(states))]
		orispl := strconv.Itoa(1000 + rng.Intn(400))
		name := fmt.Sprintf("%s %s Station", state, plantNouns[rng.Intn(len(plantNouns))])

		netGen := strconv.FormatFloat(rng.Float64()*2_000_000-50_000, 'f', 3, 64)
		switch rng.Intn(25) {
		case 0:
			netGen = ""
		case 1:
			netGen = "N/A"
		}

		records = append(records, []string{
			strconv.Itoa(i + 1),
			state,
			name,
			orispl,
			fmt.Sprintf("GT%d", 1+rng.Intn(8)),
			"OP",
			fuels[rng.Intn(len(fuels))],
			netGen,
			strconv.Itoa(1960 + rng.Intn(63)),
		})
	}
	return records
}

func writeCSV(path string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(records); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func writeXLSX(path, sheet string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	file := excelize.NewFile()
	if _, err := file.NewSheet(sheet); err != nil {
		return err
	}
	if err := file.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	writeRow := func(rowNum int, values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		row := make([]any, len(values))
		for i, v := range values {
			row[i] = v
		}
		return file.SetSheetRow(sheet, cell, &row)
	}

	if err := writeRow(1, header); err != nil {
		return err
	}
	for i, rec := range records {
		if err := writeRow(i+2, rec); err != nil {
			return err
		}
	}
	return file.SaveAs(path)
}

func printStats(records [][]string) {
	stateCounts := map[string]int{}
	var unusable int
	for _, rec := range records {
		stateCounts[rec[1]]++
		if _, err := strconv.ParseFloat(rec[7], 64); err != nil {
			unusable++
		}
	}
	log.Printf("rows with unusable GENNTAN: %d", unusable)
	for state, count := range stateCounts {
		log.Printf("  %s: %d rows", state, count)
	}
}
