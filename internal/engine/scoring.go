package engine

import (
	"sort"
	"strings"

	"github.com/kamilpajak/crankshaft/pkg/models"
)

// Scoring weights. They must sum to exactly 1.0; any change to the formula
// has to preserve that.
const (
	weightSimilarity     = 0.30
	weightBaseConfidence = 0.25
	weightSuccessRate    = 0.25
	weightSpecificity    = 0.10
	weightMileage        = 0.10
)

// Final confidence bounds. A diagnosis is never fully excluded or fully
// certain.
const (
	minConfidence = 0.05
	maxConfidence = 0.95
)

// defaultSuccessRate substitutes for cases with no recorded outcome history.
const defaultSuccessRate = 0.5

// scoreDiagnoses assigns a final confidence to every diagnosis and returns
// the list sorted by confidence descending. The sort is stable, so equal
// confidences keep their retrieval order. Applied uniformly regardless of
// which path produced the list.
func scoreDiagnoses(query models.DiagnosticQuery, diagnoses []models.Diagnosis, cases []models.RetrievedCase) []models.Diagnosis {
	bonus := specificityBonus(query, cases)
	mileage := mileageFactor(query.Mileage)

	scored := make([]models.Diagnosis, len(diagnoses))
	for i, d := range diagnoses {
		similarity, baseConfidence, successRate := matchCase(d.Cause, cases)

		confidence := similarity*weightSimilarity +
			baseConfidence*weightBaseConfidence +
			successRate*weightSuccessRate +
			bonus*weightSpecificity +
			mileage*weightMileage

		d.Confidence = clamp(confidence)
		scored[i] = d
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Confidence > scored[j].Confidence
	})
	return scored
}

// matchCase finds the best textually-matching retrieved case for a diagnosis
// cause: the first case whose cause text contains the diagnosis cause's
// leading token. Without a match, the mean similarity across all retrieved
// cases stands in as a neutral substitute.
func matchCase(cause string, cases []models.RetrievedCase) (similarity, baseConfidence, successRate float64) {
	token := firstToken(cause)
	if token != "" {
		for _, c := range cases {
			if strings.Contains(strings.ToLower(c.Cause), token) {
				successRate = defaultSuccessRate
				if c.SuccessRate != nil {
					successRate = *c.SuccessRate
				}
				return c.Similarity, c.BaseConfidence, successRate
			}
		}
	}
	return meanSimilarity(cases), defaultSuccessRate, defaultSuccessRate
}

// specificityBonus rewards retrieved evidence scoped to the query vehicle:
// 0.10 for an exact make+model match among the candidates, 0.05 for a
// make-only match, 0 otherwise.
func specificityBonus(query models.DiagnosticQuery, cases []models.RetrievedCase) float64 {
	makeMatch := false
	for _, c := range cases {
		if c.MatchesVehicle(query) {
			return 0.10
		}
		if c.MatchesMake(query) {
			makeMatch = true
		}
	}
	if makeMatch {
		return 0.05
	}
	return 0
}

// mileageFactor buckets mileage into wear-probability windows. 60k–120k is
// the peak failure window; unknown mileage scores neutral.
func mileageFactor(mileage int) float64 {
	switch {
	case mileage <= 0:
		return 0.5
	case mileage < 30000:
		return 0.4
	case mileage < 60000:
		return 0.7
	case mileage <= 120000:
		return 0.9
	case mileage <= 200000:
		return 0.8
	default:
		return 0.6
	}
}

func meanSimilarity(cases []models.RetrievedCase) float64 {
	if len(cases) == 0 {
		return defaultSuccessRate
	}
	var sum float64
	for _, c := range cases {
		sum += c.Similarity
	}
	return sum / float64(len(cases))
}

func firstToken(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func clamp(v float64) float64 {
	if v < minConfidence {
		return minConfidence
	}
	if v > maxConfidence {
		return maxConfidence
	}
	return v
}
