package store

import (
	"context"
	"errors"

	"github.com/repolens/backend/pkg/common"
)

// ErrNotFound is returned when no snapshot exists for a case.
var ErrNotFound = errors.New("no snapshot for case")

// GraphStore is the persistence port for per-case graph snapshots. The
// workbench saves through it on every mutation; there is no explicit save
// action and no teardown requirement since writes are flushed
// immediately.
type GraphStore interface {
	// Load returns the editable snapshot for a case.
	Load(ctx context.Context, caseID string) (*common.Graph, *common.Analysis, error)
	// Save overwrites the editable snapshot for a case.
	Save(ctx context.Context, caseID string, g *common.Graph, a *common.Analysis) error
	// Delete removes the editable snapshot for a case.
	Delete(ctx context.Context, caseID string) error

	// LoadPublished returns the last published snapshot for a case.
	LoadPublished(ctx context.Context, caseID string) (*common.Graph, *common.Analysis, error)
	// SavePublished overwrites the published snapshot (last write wins).
	SavePublished(ctx context.Context, caseID string, g *common.Graph, a *common.Analysis) error

	// LoadSeedText returns the locally seeded fallback text for a case.
	LoadSeedText(ctx context.Context, caseID string) (string, error)
	// SaveSeedText stores the fallback text for a case.
	SaveSeedText(ctx context.Context, caseID string, text string) error
}
