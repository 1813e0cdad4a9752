// Package pipeline orchestrates the ingest and query flows between the
// normalizer, the blob store, and the dataset cache.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/powerviz/plant-data-api/internal/dataset"
	"github.com/powerviz/plant-data-api/internal/domain"
	"github.com/powerviz/plant-data-api/internal/observability"
	"github.com/powerviz/plant-data-api/internal/tabular"
)

// Service wires the core components behind the HTTP surface.
type Service struct {
	store        domain.BlobStore
	cache        *dataset.Cache
	consolidator *dataset.Consolidator
	states       *dataset.StateIndex
	audit        domain.AuditSink
	metrics      *observability.Metrics
	logger       *slog.Logger
	sheet        string
}

// New assembles the service.
func New(
	store domain.BlobStore,
	cache *dataset.Cache,
	consolidator *dataset.Consolidator,
	states *dataset.StateIndex,
	audit domain.AuditSink,
	metrics *observability.Metrics,
	logger *slog.Logger,
	sheet string,
) *Service {
	return &Service{
		store:        store,
		cache:        cache,
		consolidator: consolidator,
		states:       states,
		audit:        audit,
		metrics:      metrics,
		logger:       logger,
		sheet:        sheet,
	}
}

// Ingest normalizes an uploaded file and stores its canonical form.
//
// Rejections (unsupported extension, underivable columns, zero usable rows)
// leave the store untouched and surface to the caller; only a store write
// failure after successful cleaning is a server-side fault. A successful
// write invalidates the dataset cache so the new data is visible to the next
// query.
func (s *Service) Ingest(ctx context.Context, userID, filename string, contents []byte) (domain.UploadResult, error) {
	s.logger.Info("processing upload", "file", filename, "bytes", len(contents))

	if !tabular.Supported(filename) {
		s.metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		s.recordAudit(ctx, userID, "UPLOAD", "file:"+filename, "FAILURE", "unsupported file type")
		return domain.UploadResult{}, domain.ErrUnsupportedFileType
	}

	table, err := tabular.Decode(filename, contents, s.sheet)
	if err != nil {
		s.metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		s.recordAudit(ctx, userID, "UPLOAD", "file:"+filename, "FAILURE", err.Error())
		return domain.UploadResult{}, fmt.Errorf("decode %q: %w", filename, err)
	}

	cleaned, err := domain.Normalize(table)
	if err != nil {
		s.metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		s.recordAudit(ctx, userID, "UPLOAD", "file:"+filename, "FAILURE", err.Error())
		return domain.UploadResult{}, err
	}
	if cleaned.Empty() {
		s.metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		s.recordAudit(ctx, userID, "UPLOAD", "file:"+filename, "FAILURE", "no usable rows")
		return domain.UploadResult{}, domain.ErrNoUsableRows
	}

	encoded, err := tabular.EncodeCSV(cleaned)
	if err != nil {
		s.metrics.UploadsTotal.WithLabelValues("failed").Inc()
		return domain.UploadResult{}, fmt.Errorf("encode %q: %w", filename, err)
	}

	objectName := tabular.CleanedObjectName(filename)
	if err := s.store.Write(ctx, objectName, encoded); err != nil {
		s.metrics.UploadsTotal.WithLabelValues("failed").Inc()
		s.recordAudit(ctx, userID, "UPLOAD", "s3_file:"+objectName, "FAILURE", err.Error())
		return domain.UploadResult{}, fmt.Errorf("store %q: %w", objectName, err)
	}

	s.cache.Invalidate()

	rows := len(cleaned.Rows)
	s.metrics.UploadsTotal.WithLabelValues("accepted").Inc()
	s.metrics.UploadRows.Observe(float64(rows))
	s.recordAudit(ctx, userID, "UPLOAD", "s3_file:"+objectName, "SUCCESS",
		fmt.Sprintf("%d records", rows))
	s.logger.Info("upload stored", "object", objectName, "rows", rows)

	return domain.UploadResult{ObjectName: objectName, Status: "uploaded", Records: rows}, nil
}

// TopPlants returns the top plants by summed net generation for a state.
// A store failure during consolidation degrades to an empty result; the
// query paths prefer availability over completeness.
func (s *Service) TopPlants(ctx context.Context, state string, limit int) []domain.PlantAggregate {
	s.metrics.QueriesTotal.WithLabelValues("plants").Inc()
	return domain.TopPlants(s.dataset(ctx), state, limit)
}

// States returns the sorted distinct states currently present in the data.
func (s *Service) States(ctx context.Context) []string {
	s.metrics.QueriesTotal.WithLabelValues("states").Inc()
	return s.states.Current(s.dataset(ctx))
}

// CheckReadiness reports whether the object store is reachable.
func (s *Service) CheckReadiness(ctx context.Context) error {
	if _, err := s.store.List(ctx); err != nil {
		return fmt.Errorf("object store unreachable: %w", err)
	}
	return nil
}

// dataset returns the consolidated dataset, empty on consolidation failure.
func (s *Service) dataset(ctx context.Context) []domain.GenerationRecord {
	records, err := s.cache.Get(ctx, s.consolidator.Consolidate)
	if err != nil {
		s.logger.Error("consolidation failed, serving empty dataset", "error", err)
		return nil
	}
	return records
}

func (s *Service) recordAudit(ctx context.Context, userID, action, resource, status, details string) {
	event := domain.NewAuditEvent(userID, action, resource, status, details)
	if err := s.audit.Record(ctx, event); err != nil {
		s.logger.Warn("audit record failed", "error", err)
	}
}
