package pgx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/repolens/backend/pkg/common"
	"github.com/repolens/backend/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
}

// SnapshotStore implements store.GraphStore on PostgreSQL. Graphs are
// stored as one JSONB snapshot per case id (editable and published in
// separate tables), overwritten in place on every mutation.
type SnapshotStore struct {
	conn pgxIConn
}

// NewSnapshotStore creates a SnapshotStore on an existing connection or
// pool.
func NewSnapshotStore(conn pgxIConn) *SnapshotStore {
	return &SnapshotStore{conn: conn}
}

func (s *SnapshotStore) load(ctx context.Context, table, caseID string) (*common.Graph, *common.Analysis, error) {
	var graphJSON []byte
	var analysisJSON []byte

	query := fmt.Sprintf(`SELECT graph, analysis FROM %s WHERE case_id = $1`, table)
	err := s.conn.QueryRow(ctx, query, caseID).Scan(&graphJSON, &analysisJSON)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, nil, store.ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var g common.Graph
	if err := json.Unmarshal(graphJSON, &g); err != nil {
		return nil, nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	var a *common.Analysis
	if len(analysisJSON) > 0 {
		a = &common.Analysis{}
		if err := json.Unmarshal(analysisJSON, a); err != nil {
			a = nil
		}
	}
	return &g, a, nil
}

func (s *SnapshotStore) save(ctx context.Context, table, caseID string, g *common.Graph, a *common.Analysis) error {
	graphJSON, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	var analysisJSON []byte
	if a != nil {
		analysisJSON, err = json.Marshal(a)
		if err != nil {
			return fmt.Errorf("failed to encode analysis: %w", err)
		}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (case_id, graph, analysis, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (case_id)
		DO UPDATE SET graph = EXCLUDED.graph, analysis = EXCLUDED.analysis, updated_at = now()
	`, table)
	if _, err := s.conn.Exec(ctx, query, caseID, graphJSON, analysisJSON); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *SnapshotStore) Load(ctx context.Context, caseID string) (*common.Graph, *common.Analysis, error) {
	return s.load(ctx, "graph_snapshots", caseID)
}

func (s *SnapshotStore) Save(ctx context.Context, caseID string, g *common.Graph, a *common.Analysis) error {
	return s.save(ctx, "graph_snapshots", caseID, g, a)
}

func (s *SnapshotStore) Delete(ctx context.Context, caseID string) error {
	if _, err := s.conn.Exec(ctx, `DELETE FROM graph_snapshots WHERE case_id = $1`, caseID); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

func (s *SnapshotStore) LoadPublished(ctx context.Context, caseID string) (*common.Graph, *common.Analysis, error) {
	return s.load(ctx, "published_graphs", caseID)
}

func (s *SnapshotStore) SavePublished(ctx context.Context, caseID string, g *common.Graph, a *common.Analysis) error {
	return s.save(ctx, "published_graphs", caseID, g, a)
}

func (s *SnapshotStore) LoadSeedText(ctx context.Context, caseID string) (string, error) {
	var text string
	err := s.conn.QueryRow(ctx, `SELECT seed_text FROM case_seeds WHERE case_id = $1`, caseID).Scan(&text)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load seed text: %w", err)
	}
	return text, nil
}

func (s *SnapshotStore) SaveSeedText(ctx context.Context, caseID string, text string) error {
	_, err := s.conn.Exec(ctx, `
		INSERT INTO case_seeds (case_id, seed_text, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (case_id)
		DO UPDATE SET seed_text = EXCLUDED.seed_text, updated_at = now()
	`, caseID, text)
	if err != nil {
		return fmt.Errorf("failed to save seed text: %w", err)
	}
	return nil
}
