package domain

import (
	"strconv"
	"strings"
)

// CanonicalColumns is the five-column API schema, in stored-file order.
var CanonicalColumns = []string{"GENID", "PNAME", "PSTATEABB", "ORISPL", "GENNTAN"}

// rawColumnNames maps eGRID GEN23 header mnemonics to the descriptive names
// used by the cleaned export. Presence of any of these keys marks a table as
// being in the raw government schema.
var rawColumnNames = map[string]string{
	"SEQGEN23":  "Generator file sequence number",
	"YEAR":      "Data Year",
	"PSTATEABB": "Plant state abbreviation",
	"PNAME":     "Plant name",
	"ORISPL":    "DOE/EIA ORIS plant or facility code",
	"GENID":     "Generator ID",
	"NUMBLR":    "Number of associated boilers",
	"GENSTAT":   "Generator status",
	"PRMVR":     "Generator prime mover type",
	"FUELG1":    "Generator primary fuel",
	"NAMEPCAP":  "Generator nameplate capacity (MW)",
	"CFACT":     "Generator capacity factor",
	"GENNTAN":   "Generator annual net generation (MWh)",
	"GENNTOZ":   "Generator ozone season net generation (MWh)",
	"GENERSRC":  "Generation data source",
	"GENYRONL":  "Generator year on-line",
	"GENYRRET":  "Generator planned or actual retirement year",
}

// descriptiveSources maps each canonical column to the descriptive header it
// is derived from when the table came through the rename step.
var descriptiveSources = map[string]string{
	"GENID":     "Generator ID",
	"PNAME":     "Plant name",
	"PSTATEABB": "Plant state abbreviation",
	"ORISPL":    "DOE/EIA ORIS plant or facility code",
	"GENNTAN":   "Generator annual net generation (MWh)",
}

// Normalize maps a table in any recognized naming convention onto the
// canonical five-column schema and drops rows that are unusable for
// aggregation.
//
// Three header conventions are accepted: the raw eGRID mnemonics, the
// descriptive cleaned names, and the canonical API names themselves. The
// last case makes Normalize idempotent, so re-processing an already-cleaned
// file yields the same output.
//
// GENNTAN cells are coerced to numeric; rows whose coercion fails, or with
// any empty value among the five required fields, are dropped. A result with
// zero rows is not an error at this layer.
func Normalize(t Table) (Table, error) {
	renamed := renameRawColumns(t)

	sources := make([]int, len(CanonicalColumns))
	var missing []string
	for i, canonical := range CanonicalColumns {
		if j, ok := renamed.ColumnIndex(descriptiveSources[canonical]); ok {
			sources[i] = j
			continue
		}
		if j, ok := renamed.ColumnIndex(canonical); ok {
			sources[i] = j
			continue
		}
		missing = append(missing, canonical)
	}
	if len(missing) > 0 {
		return Table{}, &MissingColumnsError{Columns: missing}
	}

	out := Table{Columns: append([]string(nil), CanonicalColumns...)}
	for _, row := range renamed.Rows {
		values := make([]string, len(sources))
		complete := true
		for i, j := range sources {
			v := strings.TrimSpace(renamed.Cell(row, j))
			if v == "" {
				complete = false
				break
			}
			values[i] = v
		}
		if !complete {
			continue
		}

		// GENNTAN is the last canonical column.
		gen, err := strconv.ParseFloat(values[len(values)-1], 64)
		if err != nil {
			continue
		}
		values[len(values)-1] = FormatNetGeneration(gen)

		out.Rows = append(out.Rows, values)
	}
	return out, nil
}

// renameRawColumns applies the eGRID-to-descriptive rename when any raw
// mnemonic is present in the header. Tables without raw mnemonics pass
// through unchanged; they are assumed to already be in cleaned or API form.
func renameRawColumns(t Table) Table {
	raw := false
	for _, c := range t.Columns {
		if _, ok := rawColumnNames[c]; ok {
			raw = true
			break
		}
	}
	if !raw {
		return t
	}

	columns := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		if descriptive, ok := rawColumnNames[c]; ok {
			columns[i] = descriptive
		} else {
			columns[i] = c
		}
	}
	return Table{Columns: columns, Rows: t.Rows}
}

// ToRecords converts a canonical table into generation records. Rows whose
// GENNTAN cell does not parse are skipped, never counted as zero.
func ToRecords(t Table) []GenerationRecord {
	genID, okGenID := t.ColumnIndex("GENID")
	name, okName := t.ColumnIndex("PNAME")
	state, okState := t.ColumnIndex("PSTATEABB")
	plant, okPlant := t.ColumnIndex("ORISPL")
	gen, okGen := t.ColumnIndex("GENNTAN")
	if !okGenID || !okName || !okState || !okPlant || !okGen {
		return nil
	}

	records := make([]GenerationRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		v, err := strconv.ParseFloat(strings.TrimSpace(t.Cell(row, gen)), 64)
		if err != nil {
			continue
		}
		records = append(records, GenerationRecord{
			GeneratorID: t.Cell(row, genID),
			PlantName:   t.Cell(row, name),
			State:       t.Cell(row, state),
			PlantID:     t.Cell(row, plant),
			NetGenMWh:   v,
		})
	}
	return records
}

// FormatNetGeneration renders a net-generation value the way canonical files
// store it. The shortest representation that round-trips keeps Normalize
// stable under double-processing.
func FormatNetGeneration(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
