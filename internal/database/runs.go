package database

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kamilpajak/crankshaft/pkg/models"
)

// runColumns is the standard column list for run queries.
const runColumns = `id, shop_id, query, path, top_cause, top_confidence, diagnoses, summary, created_at`

func scanRun(row pgx.Row) (*models.RunSummary, error) {
	var r models.RunSummary
	var queryJSON []byte
	err := row.Scan(
		&r.ID, &r.ShopID, &queryJSON, &r.Path, &r.TopCause,
		&r.TopConfidence, &r.Diagnoses, &r.Summary, &r.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(queryJSON, &r.Query); err != nil {
		return nil, err
	}
	return &r, nil
}

// AppendRun stores the summary of a completed diagnosis run.
func (db *DB) AppendRun(ctx context.Context, run models.RunSummary) error {
	queryJSON, err := json.Marshal(run.Query)
	if err != nil {
		return err
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO runs (id, shop_id, query, path, top_cause, top_confidence, diagnoses, summary)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.ID, run.ShopID, queryJSON, run.Path, run.TopCause,
		run.TopConfidence, run.Diagnoses, run.Summary,
	)
	return err
}

// GetRunByID retrieves a run summary. Returns nil without error when the run
// does not exist.
func (db *DB) GetRunByID(ctx context.Context, id uuid.UUID) (*models.RunSummary, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = $1`,
		id,
	)
	return scanRun(row)
}

// CountShopRunsSince returns the number of runs recorded for a shop since a
// given time. Used for monthly usage limits.
func (db *DB) CountShopRunsSince(ctx context.Context, shopID uuid.UUID, since time.Time) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM runs WHERE shop_id = $1 AND created_at >= $2`,
		shopID, since,
	).Scan(&count)
	return count, err
}
