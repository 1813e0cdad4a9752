// Package domain models EPA eGRID generator-level power-generation data.
//
// # Data Source
//
// Records originate from the GEN23 sheet of EPA's eGRID dataset
// (https://www.epa.gov/egrid), one row per generator per data year. Users
// upload the sheet as-is (CSV or XLSX export); the service reduces each row
// to the five columns the API consumes.
//
// # Column Conventions
//
// The raw sheet uses terse government mnemonics. The five that survive
// cleaning, and their canonical spellings, are:
//
//	GENID      Generator ID: opaque, unique only within a plant.
//	PNAME      Plant name: human readable, not guaranteed unique.
//	PSTATEABB  Plant state abbreviation: two letters, the query partition key.
//	ORISPL     DOE/EIA ORIS plant or facility code: identifies the physical
//	           plant; many generators share one ORISPL.
//	GENNTAN    Generator annual net generation in MWh. May be negative:
//	           pumped-storage hydro and plants with large station loads can
//	           consume more than they produce over a year.
//
// Uploads are also accepted with the descriptive headers produced by the
// cleaning step (e.g. "Plant state abbreviation") or with the canonical
// names themselves, which makes normalization idempotent.
//
// # Cleaning Rules
//
// GENNTAN must parse as a number; eGRID uses blanks and textual sentinels
// for unreported generation, and such rows are dropped rather than counted
// as zero. Any empty cell among the five required fields also drops the row.
//
// # Stored Form
//
// A cleaned upload is stored as cleaned_<original-basename>.csv: UTF-8,
// comma-delimited, header row, columns exactly GENID, PNAME, PSTATEABB,
// ORISPL, GENNTAN in that order.
//
// # Aggregation
//
// Plants are grouped by the (ORISPL, PNAME) pair. A plant renamed between
// uploads therefore forms two groups; no identity resolution is attempted.
// Repeated uploads under different filenames add data; no deduplication is
// performed across stored files.
package domain
