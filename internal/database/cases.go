package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/kamilpajak/crankshaft/pkg/models"
)

// caseColumns is the standard column list for case queries.
const caseColumns = `id, fault_code, make, model, year_from, year_to, engine, cause, category,
	base_confidence, success_rate, parts_needed, labor_hours, labor_category,
	diagnostic_steps, repair_plan, source, created_at`

// scanCase scans a row into a RetrievedCase and unmarshals the repair plan
// JSON. The trailing extras (e.g. a computed similarity column) are appended
// to the scan destinations.
func scanCase(row pgx.Row, c *models.RetrievedCase, extras ...any) error {
	var planJSON []byte
	dest := []any{
		&c.ID, &c.FaultCode, &c.Make, &c.Model, &c.YearFrom, &c.YearTo, &c.Engine,
		&c.Cause, &c.Category, &c.BaseConfidence, &c.SuccessRate, &c.PartsNeeded,
		&c.LaborHours, &c.LaborCategory, &c.DiagnosticSteps, &planJSON, &c.Source,
		&c.CreatedAt,
	}
	dest = append(dest, extras...)
	if err := row.Scan(dest...); err != nil {
		return err
	}
	return unmarshalPlan(planJSON, c)
}

// unmarshalPlan unmarshals repair plan JSON into a case if present.
func unmarshalPlan(planJSON []byte, c *models.RetrievedCase) error {
	if planJSON != nil {
		c.RepairPlan = &models.RepairPlan{}
		return json.Unmarshal(planJSON, c.RepairPlan)
	}
	return nil
}

// SearchCasesParams contains filters for a vector similarity search.
type SearchCasesParams struct {
	Embedding     []float32
	FaultCode     string
	Make          string
	Model         string
	Year          int
	Limit         int
	MinSimilarity float64
}

// SearchCases performs a cosine similarity search over case embeddings.
// Cases with a null make/model act as inclusive wildcards for the vehicle
// filters. Results carry their similarity score and are ordered by it
// descending.
func (db *DB) SearchCases(ctx context.Context, params SearchCasesParams) ([]models.RetrievedCase, error) {
	if params.Limit <= 0 {
		params.Limit = 10
	}

	vec := pgvector.NewVector(params.Embedding)
	args := []any{vec, params.MinSimilarity}
	conds := []string{
		"embedding IS NOT NULL",
		"1 - (embedding <=> $1) >= $2",
	}

	if params.FaultCode != "" {
		args = append(args, params.FaultCode)
		conds = append(conds, fmt.Sprintf("fault_code = $%d", len(args)))
	}
	if params.Make != "" {
		args = append(args, params.Make)
		conds = append(conds, fmt.Sprintf("(make IS NULL OR make ILIKE $%d)", len(args)))
	}
	if params.Model != "" {
		args = append(args, params.Model)
		conds = append(conds, fmt.Sprintf("(model IS NULL OR model ILIKE $%d)", len(args)))
	}
	if params.Year > 0 {
		args = append(args, params.Year)
		conds = append(conds, fmt.Sprintf(
			"(year_from IS NULL OR year_from <= $%d) AND (year_to IS NULL OR year_to >= $%d)",
			len(args), len(args)))
	}

	args = append(args, params.Limit)
	query := `SELECT ` + caseColumns + `, 1 - (embedding <=> $1) AS similarity
		 FROM cases
		 WHERE ` + strings.Join(conds, " AND ") + `
		 ORDER BY embedding <=> $1
		 LIMIT $` + fmt.Sprint(len(args))

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []models.RetrievedCase
	for rows.Next() {
		var c models.RetrievedCase
		if err := scanCase(rows, &c, &c.Similarity); err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

// ExactLookupCases returns cases matching a fault code, optionally narrowed
// by vehicle make. Cases with a null make are inclusive wildcards. Used when
// no embedding is available for vector search.
func (db *DB) ExactLookupCases(ctx context.Context, faultCode, vehicleMake string) ([]models.RetrievedCase, error) {
	var rows pgx.Rows
	var err error

	if vehicleMake != "" {
		rows, err = db.pool.Query(ctx,
			`SELECT `+caseColumns+` FROM cases
			 WHERE fault_code = $1 AND (make IS NULL OR make ILIKE $2)
			 ORDER BY base_confidence DESC`,
			faultCode, vehicleMake,
		)
	} else {
		rows, err = db.pool.Query(ctx,
			`SELECT `+caseColumns+` FROM cases
			 WHERE fault_code = $1
			 ORDER BY base_confidence DESC`,
			faultCode,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []models.RetrievedCase
	for rows.Next() {
		var c models.RetrievedCase
		if err := scanCase(rows, &c); err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

// InsertCaseParams contains parameters for inserting a new case.
type InsertCaseParams struct {
	FaultCode       string
	Make            *string
	Model           *string
	YearFrom        *int
	YearTo          *int
	Engine          *string
	Cause           string
	Category        string
	BaseConfidence  float64
	SuccessRate     *float64
	PartsNeeded     []string
	LaborHours      float64
	LaborCategory   string
	DiagnosticSteps []string
	RepairPlan      *models.RepairPlan
	Source          string
	Embedding       []float32
}

// InsertCase stores a new case. The embedding is optional; cases without one
// are only reachable through exact lookup.
func (db *DB) InsertCase(ctx context.Context, params InsertCaseParams) (uuid.UUID, error) {
	var planJSON []byte
	var err error
	if params.RepairPlan != nil {
		planJSON, err = json.Marshal(params.RepairPlan)
		if err != nil {
			return uuid.Nil, err
		}
	}

	var embedding any
	if len(params.Embedding) > 0 {
		embedding = pgvector.NewVector(params.Embedding)
	}

	if params.Source == "" {
		params.Source = models.CaseSourceAuthored
	}
	if params.PartsNeeded == nil {
		params.PartsNeeded = []string{}
	}
	if params.DiagnosticSteps == nil {
		params.DiagnosticSteps = []string{}
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO cases (fault_code, make, model, year_from, year_to, engine, cause, category,
			base_confidence, success_rate, parts_needed, labor_hours, labor_category,
			diagnostic_steps, repair_plan, source, embedding)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		 RETURNING id`,
		params.FaultCode, params.Make, params.Model, params.YearFrom, params.YearTo,
		params.Engine, params.Cause, params.Category, params.BaseConfidence,
		params.SuccessRate, params.PartsNeeded, params.LaborHours, params.LaborCategory,
		params.DiagnosticSteps, planJSON, params.Source, embedding,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// GetRepairPlan reads the stored repair plan for a case. Returns nil without
// error when the case has no plan or does not exist.
func (db *DB) GetRepairPlan(ctx context.Context, caseID uuid.UUID) (*models.RepairPlan, error) {
	var planJSON []byte
	err := db.pool.QueryRow(ctx,
		`SELECT repair_plan FROM cases WHERE id = $1`,
		caseID,
	).Scan(&planJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if planJSON == nil {
		return nil, nil
	}
	plan := &models.RepairPlan{}
	if err := json.Unmarshal(planJSON, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// CountCases returns the total number of stored cases.
func (db *DB) CountCases(ctx context.Context) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cases`).Scan(&count)
	return count, err
}
