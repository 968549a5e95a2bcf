package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamilpajak/crankshaft/pkg/models"
)

func TestRetrieve_VectorSearch(t *testing.T) {
	expected := highSimilarityCase()
	e := New(Config{
		Cases:    &fakeCaseStore{searchCases: []models.RetrievedCase{expected}},
		Embedder: &fakeEmbedder{},
	})

	cases := e.retrieve(context.Background(), testQuery())
	require.Len(t, cases, 1)
	assert.Equal(t, expected.ID, cases[0].ID)
	assert.Equal(t, 0.88, cases[0].Similarity)
}

func TestRetrieve_EmbeddingFailureFallsBackToExact(t *testing.T) {
	honda := "Honda"
	stored := models.RetrievedCase{
		ID:             uuid.New(),
		FaultCode:      "P0301",
		Make:           &honda,
		Cause:          "Failed ignition coil",
		BaseConfidence: 0.7,
	}
	e := New(Config{
		Cases: &fakeCaseStore{
			exactCases: map[string][]models.RetrievedCase{
				"P0301": {stored},
			},
		},
		Embedder: &fakeEmbedder{err: fmt.Errorf("service down")},
	})

	cases := e.retrieve(context.Background(), testQuery())
	require.Len(t, cases, 1)
	// Make matches but model is a wildcard, so no boost: similarity is the
	// stored base confidence.
	assert.Equal(t, 0.7, cases[0].Similarity)
}

func TestRetrieve_NoEmbedderUsesExact(t *testing.T) {
	e := New(Config{
		Cases: &fakeCaseStore{
			exactCases: map[string][]models.RetrievedCase{
				"P0301": {{ID: uuid.New(), FaultCode: "P0301", BaseConfidence: 0.6}},
			},
		},
	})

	cases := e.retrieve(context.Background(), testQuery())
	assert.Len(t, cases, 1)
}

func TestExactRetrieve_VehicleMatchBoost(t *testing.T) {
	honda := "Honda"
	civic := "Civic"
	matching := models.RetrievedCase{
		ID: uuid.New(), FaultCode: "P0301",
		Make: &honda, Model: &civic,
		BaseConfidence: 0.6,
	}
	generic := models.RetrievedCase{
		ID: uuid.New(), FaultCode: "P0301",
		BaseConfidence: 0.65,
	}
	e := New(Config{
		Cases: &fakeCaseStore{
			exactCases: map[string][]models.RetrievedCase{
				"P0301": {generic, matching},
			},
		},
	})

	cases := e.exactRetrieve(context.Background(), testQuery())
	require.Len(t, cases, 2)

	// The boosted vehicle match overtakes the generic case.
	assert.Equal(t, matching.ID, cases[0].ID)
	assert.InDelta(t, 0.75, cases[0].Similarity, 1e-9)
	assert.Equal(t, 0.65, cases[1].Similarity)
}

func TestExactRetrieve_BoostCappedAtCeiling(t *testing.T) {
	honda := "Honda"
	civic := "Civic"
	e := New(Config{
		Cases: &fakeCaseStore{
			exactCases: map[string][]models.RetrievedCase{
				"P0301": {{
					ID: uuid.New(), FaultCode: "P0301",
					Make: &honda, Model: &civic,
					BaseConfidence: 0.9,
				}},
			},
		},
	})

	cases := e.exactRetrieve(context.Background(), testQuery())
	require.Len(t, cases, 1)
	assert.Equal(t, boostCeiling, cases[0].Similarity)
}

func TestExactRetrieve_DedupesAcrossCodes(t *testing.T) {
	shared := models.RetrievedCase{ID: uuid.New(), FaultCode: "P0301", BaseConfidence: 0.6}
	e := New(Config{
		Cases: &fakeCaseStore{
			exactCases: map[string][]models.RetrievedCase{
				"P0301": {shared},
				"P0302": {shared, {ID: uuid.New(), FaultCode: "P0302", BaseConfidence: 0.5}},
			},
		},
	})

	query := testQuery()
	query.DTCCodes = []string{"P0301", "P0302"}
	cases := e.exactRetrieve(context.Background(), query)
	assert.Len(t, cases, 2)
}

func TestExactRetrieve_NoCodes(t *testing.T) {
	e := New(Config{Cases: &fakeCaseStore{}})

	query := testQuery()
	query.DTCCodes = nil
	assert.Empty(t, e.exactRetrieve(context.Background(), query))
}
