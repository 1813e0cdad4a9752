package domain

// GenerationRecord is one generator-year row in canonical form. Records are
// materialized fresh on every consolidation and discarded after aggregation.
type GenerationRecord struct {
	GeneratorID string  // GENID, opaque, not unique across plants
	PlantName   string  // PNAME, human-readable, not guaranteed unique
	State       string  // PSTATEABB, 2-letter state abbreviation
	PlantID     string  // ORISPL, DOE/EIA ORIS facility code as text
	NetGenMWh   float64 // GENNTAN, annual net generation; may be negative
}

// PlantAggregate is one row of a top-plants query result: total net
// generation summed over every generator of a (plant code, plant name) pair
// within the requested state.
type PlantAggregate struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	State         string  `json:"state"`
	NetGeneration float64 `json:"netGeneration"`
}

// UploadResult describes a successfully ingested file.
type UploadResult struct {
	ObjectName string `json:"filename"`
	Status     string `json:"status"`
	Records    int    `json:"records_count"`
}
