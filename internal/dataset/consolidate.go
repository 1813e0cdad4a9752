package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/powerviz/plant-data-api/internal/domain"
	"github.com/powerviz/plant-data-api/internal/observability"
	"github.com/powerviz/plant-data-api/internal/tabular"
)

// Consolidator merges every stored CSV blob into one in-memory dataset.
type Consolidator struct {
	store   domain.BlobStore
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewConsolidator creates a consolidator over the given blob store.
func NewConsolidator(store domain.BlobStore, logger *slog.Logger, metrics *observability.Metrics) *Consolidator {
	return &Consolidator{store: store, logger: logger, metrics: metrics}
}

// Consolidate lists every .csv blob, fetches and normalizes each, and
// concatenates the surviving rows in listing order.
//
// Stored files are normally already canonical, but normalization tolerates
// both forms, so files written by older versions or placed in the bucket by
// hand still consolidate. A file missing required columns is skipped with a
// warning; a failed list, fetch, or decode aborts the whole attempt, so one
// unavailable blob makes this attempt's dataset empty rather than partial.
func (c *Consolidator) Consolidate(ctx context.Context) ([]domain.GenerationRecord, error) {
	start := time.Now()

	names, err := c.store.List(ctx)
	if err != nil {
		c.metrics.ConsolidationErrors.Inc()
		return nil, fmt.Errorf("list blobs: %w", err)
	}

	var all []domain.GenerationRecord
	merged := 0
	for _, name := range names {
		if !strings.HasSuffix(name, ".csv") {
			continue
		}

		data, err := c.store.Fetch(ctx, name)
		if err != nil {
			c.metrics.ConsolidationErrors.Inc()
			return nil, fmt.Errorf("fetch blob %q: %w", name, err)
		}

		table, err := tabular.DecodeCSV(data)
		if err != nil {
			c.metrics.ConsolidationErrors.Inc()
			return nil, fmt.Errorf("decode blob %q: %w", name, err)
		}

		cleaned, err := domain.Normalize(table)
		if err != nil {
			c.logger.Warn("skipping blob with unusable schema", "blob", name, "error", err)
			continue
		}
		if cleaned.Empty() {
			c.logger.Warn("no usable rows in blob", "blob", name)
			continue
		}

		records := domain.ToRecords(cleaned)
		all = append(all, records...)
		merged++
		c.logger.Debug("consolidated blob", "blob", name, "rows", len(records))
	}

	c.metrics.ConsolidationDuration.Observe(time.Since(start).Seconds())
	c.metrics.BlobsConsolidated.Observe(float64(merged))
	c.metrics.DatasetRows.Set(float64(len(all)))
	c.logger.Info("dataset consolidated", "blobs", merged, "rows", len(all))

	return all, nil
}
