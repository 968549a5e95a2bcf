// Package engine implements the diagnostic decision engine: retrieval of
// similar historical cases, synthesis-path routing, confidence scoring,
// repair-plan merging, and the outcome feedback loop.
package engine

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kamilpajak/crankshaft/internal/cache"
	"github.com/kamilpajak/crankshaft/internal/database"
	"github.com/kamilpajak/crankshaft/internal/embedding"
	"github.com/kamilpajak/crankshaft/internal/llm"
	"github.com/kamilpajak/crankshaft/pkg/models"
)

// lowConfidenceFloor flags runs whose top confidence warrants a warning
// rather than rejection: a low-confidence hypothesis set still beats nothing.
const lowConfidenceFloor = 0.70

// RunLog is the durable log of completed runs. Appends are best-effort.
type RunLog interface {
	AppendRun(ctx context.Context, run models.RunSummary) error
	GetRunByID(ctx context.Context, id uuid.UUID) (*models.RunSummary, error)
}

// OutcomeStore persists technician-confirmed outcomes.
type OutcomeStore interface {
	AppendOutcome(ctx context.Context, params database.AppendOutcomeParams) (*models.OutcomeRecord, error)
	ListOutcomes(ctx context.Context) ([]models.OutcomeRecord, error)
}

// Engine runs diagnosis pipelines. All collaborators are injected; every
// run's intermediate state is local to that run, so one Engine is safe for
// concurrent use.
type Engine struct {
	cases    CaseStore
	embedder embedding.Client
	synth    llm.Synthesizer
	registry *cache.Manager[models.RegistryData]
	labor    *cache.Manager[models.LaborEstimate]
	runs     RunLog
	outcomes OutcomeStore
}

// Config holds engine collaborators. Cases and Synthesizer are required;
// the rest degrade gracefully when absent.
type Config struct {
	Cases     CaseStore
	Embedder  embedding.Client
	Synth     llm.Synthesizer
	Registry  *cache.Manager[models.RegistryData]
	LaborTime *cache.Manager[models.LaborEstimate]
	Runs      RunLog
	Outcomes  OutcomeStore
}

// New creates a diagnosis engine.
func New(cfg Config) *Engine {
	return &Engine{
		cases:    cfg.Cases,
		embedder: cfg.Embedder,
		synth:    cfg.Synth,
		registry: cfg.Registry,
		labor:    cfg.LaborTime,
		runs:     cfg.Runs,
		outcomes: cfg.Outcomes,
	}
}

// Run executes one diagnosis: validate, retrieve cases and registry data in
// parallel, route to a synthesis path, score, and assemble the result. The
// returned result is complete even when degradable collaborators failed;
// only validation and synthesis failures surface as errors.
func (e *Engine) Run(ctx context.Context, query models.DiagnosticQuery, shopID *uuid.UUID) (*models.DiagnosisResult, error) {
	if err := validate(query); err != nil {
		return nil, err
	}

	// Vector search and registry lookup are independent; one failing must
	// not fail the other.
	var (
		wg       sync.WaitGroup
		cases    []models.RetrievedCase
		registry cache.Result[models.RegistryData]
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		registry = e.fetchRegistry(ctx, query)
	}()
	cases = e.retrieve(ctx, query)
	wg.Wait()

	if registry.Stale {
		log.Printf("run: serving stale registry data for %s", query.VehicleDescription())
	}

	path := routePath(cases)
	diagnoses, plan, steps, summary, err := e.synthesizePath(ctx, path, query, cases, registry.Value)
	if err != nil {
		return nil, err
	}

	diagnoses = scoreDiagnoses(query, diagnoses, cases)
	e.refineLabor(ctx, query, plan, diagnoses)

	result := &models.DiagnosisResult{
		RunID:           uuid.New(),
		Path:            path,
		Diagnoses:       diagnoses,
		RepairPlan:      plan,
		DiagnosticSteps: steps,
		Summary:         summary,
		Registry:        registry.Value,
		CreatedAt:       time.Now().UTC(),
	}
	if top := result.TopDiagnosis(); top != nil && top.Confidence < lowConfidenceFloor {
		result.LowConfidence = true
	}

	e.logRun(ctx, result, query, shopID)
	return result, nil
}

// synthesizePath builds the diagnosis list and repair plan for the routed
// path. kb_direct reads everything from the retrieved cases; the other two
// paths require the synthesis service and fail the run when it does.
func (e *Engine) synthesizePath(ctx context.Context, path string, query models.DiagnosticQuery, cases []models.RetrievedCase, registry models.RegistryData) ([]models.Diagnosis, *models.RepairPlan, []string, string, error) {
	if path == models.PathKBDirect {
		diagnoses, plan, steps := buildDirect(cases)
		summary := fmt.Sprintf("Matched %d historical case(s) for %s; strongest match %.0f%% similar.",
			len(diagnoses), strings.Join(query.DTCCodes, ", "), cases[0].Similarity*100)
		return diagnoses, plan, steps, summary, nil
	}

	input := llm.SynthesisInput{
		Query:    query,
		Cases:    cases,
		Registry: registry,
	}
	if path == models.PathKBWithClaude {
		input.ExistingPlan = cases[0].RepairPlan
	}

	out, err := e.synth.Synthesize(ctx, input)
	if err != nil {
		return nil, nil, nil, "", &SynthesisError{Path: path, Err: err}
	}

	plan := out.RepairPlan
	if path == models.PathKBWithClaude {
		plan = mergePlans(cases[0].RepairPlan, out.RepairPlan)
	}
	if plan != nil && plan.Labor.Source == "" {
		plan.Labor.Source = models.LaborSourceSynthesis
	}
	return out.Diagnoses, plan, out.DiagnosticSteps, out.Summary, nil
}

// buildDirect assembles diagnoses straight from retrieved cases: candidates
// above the similarity floor, capped to the strongest few, each carrying its
// own stored metadata forward into scoring.
func buildDirect(cases []models.RetrievedCase) ([]models.Diagnosis, *models.RepairPlan, []string) {
	var diagnoses []models.Diagnosis
	for _, c := range cases {
		if c.Similarity < candidateSimilarity {
			continue
		}
		diagnoses = append(diagnoses, models.Diagnosis{
			Cause:         c.Cause,
			Reasoning:     fmt.Sprintf("Matched historical case for %s (%.0f%% similar)", c.FaultCode, c.Similarity*100),
			PartsNeeded:   c.PartsNeeded,
			LaborCategory: c.LaborCategory,
			LaborHours:    c.LaborHours,
		})
		if len(diagnoses) >= maxDirectDiagnoses {
			break
		}
	}

	plan := copyPlan(cases[0].RepairPlan)
	if plan.Labor.Source == "" {
		plan.Labor.Source = models.LaborSourceKnowledgeBase
	}
	return diagnoses, plan, append([]string(nil), cases[0].DiagnosticSteps...)
}

// fetchRegistry reads recall/complaint data through the 30-day cache.
func (e *Engine) fetchRegistry(ctx context.Context, query models.DiagnosticQuery) cache.Result[models.RegistryData] {
	if e.registry == nil {
		return cache.Result[models.RegistryData]{}
	}
	key := cache.Key(query.Make, query.Model, strconv.Itoa(query.Year))
	return e.registry.Get(ctx, key)
}

// refineLabor consults the live labor-time guide through the 90-day cache.
// It only fills a missing estimate; stored figures win otherwise, and
// absence of guide data is non-fatal.
func (e *Engine) refineLabor(ctx context.Context, query models.DiagnosticQuery, plan *models.RepairPlan, diagnoses []models.Diagnosis) {
	if e.labor == nil || plan == nil || plan.Labor.Hours > 0 || len(diagnoses) == 0 {
		return
	}
	key := cache.Key(strconv.Itoa(query.Year), query.Make, query.Model, diagnoses[0].Cause)
	res := e.labor.Get(ctx, key)
	if res.Value.Hours > 0 {
		plan.Labor.Hours = res.Value.Hours
		plan.Labor.Source = models.LaborSourceLiveGuide
		if res.Value.Notes != "" {
			plan.SpecialNotes = append(plan.SpecialNotes, res.Value.Notes)
		}
	}
}

// logRun appends the run summary to the durable log. Best-effort: a logging
// failure never discards a completed diagnosis.
func (e *Engine) logRun(ctx context.Context, result *models.DiagnosisResult, query models.DiagnosticQuery, shopID *uuid.UUID) {
	if e.runs == nil {
		return
	}
	summary := models.RunSummary{
		ID:        result.RunID,
		ShopID:    shopID,
		Query:     query,
		Path:      result.Path,
		Diagnoses: len(result.Diagnoses),
		Summary:   result.Summary,
	}
	if top := result.TopDiagnosis(); top != nil {
		summary.TopCause = top.Cause
		summary.TopConfidence = top.Confidence
	}
	if err := e.runs.AppendRun(ctx, summary); err != nil {
		log.Printf("run %s: failed to append run log: %v", result.RunID, err)
	}
}

// validate rejects a query before any external call is made.
func validate(query models.DiagnosticQuery) error {
	if strings.TrimSpace(query.Make) == "" || strings.TrimSpace(query.Model) == "" {
		return &ValidationError{Reason: "vehicle make and model are required"}
	}
	if len(query.DTCCodes) == 0 && strings.TrimSpace(query.Symptoms) == "" {
		return &ValidationError{Reason: "at least one fault code or a symptom description is required"}
	}
	return nil
}
