package engine

import (
	"context"
	"log"
	"sort"

	"github.com/google/uuid"

	"github.com/kamilpajak/crankshaft/internal/database"
	"github.com/kamilpajak/crankshaft/pkg/models"
)

// Retrieval tuning.
const (
	searchLimit         = 10
	searchMinSimilarity = 0.5
	// vehicleMatchBoost raises the synthesized similarity of exact-lookup
	// candidates whose make and model both match the query vehicle.
	vehicleMatchBoost = 0.15
	boostCeiling      = 0.95
)

// CaseStore is the vector-searchable case corpus consumed by the engine.
type CaseStore interface {
	SearchCases(ctx context.Context, params database.SearchCasesParams) ([]models.RetrievedCase, error)
	ExactLookupCases(ctx context.Context, faultCode, vehicleMake string) ([]models.RetrievedCase, error)
	InsertCase(ctx context.Context, params database.InsertCaseParams) (uuid.UUID, error)
}

// retrieve surfaces candidate cases for a query. It embeds the query text
// and runs a vector search; if the embedding service is unavailable or the
// search comes back empty, it degrades to an exact-match lookup by fault
// code. Retrieval never aborts a run: any error is logged and an empty
// candidate list returned, since synthesis can still proceed on fault codes
// and symptoms alone.
func (e *Engine) retrieve(ctx context.Context, query models.DiagnosticQuery) []models.RetrievedCase {
	if e.embedder != nil {
		vector, err := e.embedder.Embed(ctx, query.SearchText())
		if err != nil {
			log.Printf("retrieval: embedding failed, falling back to exact lookup: %v", err)
		} else {
			cases, err := e.vectorSearch(ctx, query, vector)
			if err != nil {
				log.Printf("retrieval: vector search failed: %v", err)
				return nil
			}
			if len(cases) > 0 {
				return cases
			}
		}
	}

	return e.exactRetrieve(ctx, query)
}

func (e *Engine) vectorSearch(ctx context.Context, query models.DiagnosticQuery, vector []float32) ([]models.RetrievedCase, error) {
	params := database.SearchCasesParams{
		Embedding:     vector,
		Make:          query.Make,
		Model:         query.Model,
		Year:          query.Year,
		Limit:         searchLimit,
		MinSimilarity: searchMinSimilarity,
	}
	if len(query.DTCCodes) > 0 {
		params.FaultCode = query.DTCCodes[0]
	}
	return e.cases.SearchCases(ctx, params)
}

// exactRetrieve looks up cases by fault code and vehicle make, synthesizing
// a similarity for each from its stored base confidence, boosted when both
// make and model exactly match the query vehicle.
func (e *Engine) exactRetrieve(ctx context.Context, query models.DiagnosticQuery) []models.RetrievedCase {
	if len(query.DTCCodes) == 0 {
		return nil
	}

	seen := make(map[uuid.UUID]bool)
	var candidates []models.RetrievedCase
	for _, code := range query.DTCCodes {
		cases, err := e.cases.ExactLookupCases(ctx, code, query.Make)
		if err != nil {
			log.Printf("retrieval: exact lookup failed for %s: %v", code, err)
			continue
		}
		for _, c := range cases {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			c.Similarity = c.BaseConfidence
			if c.MatchesVehicle(query) {
				c.Similarity += vehicleMatchBoost
				if c.Similarity > boostCeiling {
					c.Similarity = boostCeiling
				}
			}
			candidates = append(candidates, c)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})
	return candidates
}
