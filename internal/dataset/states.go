package dataset

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/powerviz/plant-data-api/internal/domain"
)

// StateIndex tracks the distinct set of states seen in the dataset. The
// snapshot is reconciled against each freshly consolidated dataset rather
// than trusted blindly; a change is an observable audit point, but the
// returned value is always the fresh set.
type StateIndex struct {
	logger *slog.Logger

	mu       sync.Mutex
	snapshot []string
}

// NewStateIndex creates an empty state index.
func NewStateIndex(logger *slog.Logger) *StateIndex {
	return &StateIndex{logger: logger}
}

// Current returns the sorted distinct states present in records, updating
// the snapshot when it no longer matches.
func (s *StateIndex) Current(records []domain.GenerationRecord) []string {
	fresh := domain.DistinctStates(records)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.snapshot == nil:
		s.logger.Debug("initializing state index", "states", fresh)
		s.snapshot = fresh
	case !slices.Equal(s.snapshot, fresh):
		s.logger.Info("state set changed", "from", s.snapshot, "to", fresh)
		s.snapshot = fresh
	}

	return fresh
}
