// Package trajan is the public entry point for the trajectory efficiency
// analysis engine: analysis runs, optimizer studies, path regeneration, and
// artifact verification, backed by a pluggable run-index store.
package trajan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"trajan/internal/finalize"
	"trajan/internal/metrics"
	"trajan/internal/model"
	"trajan/internal/optimizer"
	"trajan/internal/pathregen"
	"trajan/internal/storage"
	"trajan/internal/vecmath"
)

const (
	defaultArtifactsDir = "artifacts"
	defaultDBPath       = "trajan.db"
)

type Options struct {
	StoreKind    string
	DBPath       string
	ArtifactsDir string
}

type Client struct {
	store        storage.Store
	artifactsDir string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:        store,
		artifactsDir: artifactsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

// AnalyzeRequest describes one full pipeline pass over a trajectory.
type AnalyzeRequest struct {
	// RunID names the artifact set; a UUID is generated when empty.
	RunID string

	Points  []model.TrajectoryPoint
	Metrics metrics.Config

	// Seed is recorded in provenance. Zero means the documented default.
	Seed int64

	// Timestamp, when non-zero, pins provenance and the run index entry
	// for byte-reproducible finalization.
	Timestamp time.Time

	MarkReadOnly bool
}

// AnalyzeSummary reports one finalized analysis.
type AnalyzeSummary struct {
	RunID        string
	ArtifactsDir string
	Vectors      model.VectorSet
	Summary      model.EfficiencySummary
	// Checksums maps artifact filename to SHA-256 hex digest.
	Checksums map[string]string
}

// Analyze runs metrics derivation, evaluation, and finalization over the
// given trajectory, then records the run in the index.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (AnalyzeSummary, error) {
	if len(req.Points) == 0 {
		return AnalyzeSummary{}, errors.New("trajectory points are required")
	}
	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	seed := req.Seed
	if seed == 0 {
		seed = optimizer.DefaultSeed
	}

	vectors, summary, err := metrics.Run(req.Points, req.Metrics)
	if err != nil {
		return AnalyzeSummary{}, err
	}

	runDir := filepath.Join(c.artifactsDir, runID)
	result, err := finalize.Finalize(runDir, runID, vectors, summary, finalize.Options{
		Seed:         seed,
		Timestamp:    req.Timestamp,
		MarkReadOnly: req.MarkReadOnly,
	})
	if err != nil {
		return AnalyzeSummary{}, err
	}

	createdAt := req.Timestamp
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	record := model.AnalysisRunRecord{
		RunID:           runID,
		CreatedAtUTC:    createdAt.UTC().Format(time.RFC3339),
		Seed:            seed,
		PointCount:      len(req.Points),
		EfficiencyScore: summary.EfficiencyScore,
		Classification:  summary.Classification,
		ArtifactsDir:    result.Dir,
	}
	if err := c.store.SaveAnalysisRun(ctx, record); err != nil {
		return AnalyzeSummary{}, err
	}

	return AnalyzeSummary{
		RunID:        runID,
		ArtifactsDir: result.Dir,
		Vectors:      vectors,
		Summary:      summary,
		Checksums:    result.Checksums,
	}, nil
}

// OptimizeRequest describes one strategy-comparison study.
type OptimizeRequest struct {
	StudyID string
	Lengths []int
	Seed    int64
	Alpha   float64
	Workers int
}

// OptimizeSummary carries the study report plus its wire rendering.
type OptimizeSummary struct {
	StudyID string
	Report  optimizer.Report
	Wire    []byte
}

// Optimize runs the seeded strategy comparison and records the study.
func (c *Client) Optimize(ctx context.Context, req OptimizeRequest) (OptimizeSummary, error) {
	studyID := req.StudyID
	if studyID == "" {
		studyID = uuid.NewString()
	}

	report, err := optimizer.Run(ctx, optimizer.Config{
		Lengths: req.Lengths,
		Seed:    req.Seed,
		Alpha:   req.Alpha,
		Workers: req.Workers,
	})
	if err != nil {
		return OptimizeSummary{}, err
	}
	wire, err := report.MarshalWire()
	if err != nil {
		return OptimizeSummary{}, err
	}

	lengths := make([]int, 0, len(report.Results))
	for _, res := range report.Results {
		lengths = append(lengths, res.Length)
	}
	record := model.StudyRecord{
		StudyID:       studyID,
		CreatedAtUTC:  time.Now().UTC().Format(time.RFC3339),
		Seed:          report.Seed,
		Lengths:       lengths,
		MeanCostRatio: report.Aggregate.MeanCostRatio,
		ReportJSON:    wire,
	}
	if err := c.store.SaveStudy(ctx, record); err != nil {
		return OptimizeSummary{}, err
	}

	return OptimizeSummary{StudyID: studyID, Report: report, Wire: wire}, nil
}

// RegenerateRequest describes one backward search toward a target
// efficiency vector.
type RegenerateRequest struct {
	Start            model.VectorSet
	Target           vecmath.Vec3
	GridStepDegrees  float64
	ToleranceDegrees float64
	MaxCandidates    int
}

// Regenerate searches the angular grid for base-vector triples implying the
// target efficiency direction.
func (c *Client) Regenerate(req RegenerateRequest) (pathregen.Result, error) {
	return pathregen.Search(req.Start, req.Target, pathregen.Config{
		GridStepDegrees:  req.GridStepDegrees,
		ToleranceDegrees: req.ToleranceDegrees,
		MaxCandidates:    req.MaxCandidates,
	})
}

// Verify recomputes artifact checksums for a finalized run.
func (c *Client) Verify(runID string) (finalize.VerifyReport, error) {
	return finalize.Verify(filepath.Join(c.artifactsDir, runID), runID)
}

type RunsRequest struct {
	Limit int
}

// Runs lists indexed analysis runs, newest first.
func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]model.AnalysisRunRecord, error) {
	return c.store.ListAnalysisRuns(ctx, req.Limit)
}

// Studies lists indexed optimizer studies, newest first.
func (c *Client) Studies(ctx context.Context, limit int) ([]model.StudyRecord, error) {
	return c.store.ListStudies(ctx, limit)
}

// Study fetches one stored study record.
func (c *Client) Study(ctx context.Context, studyID string) (model.StudyRecord, bool, error) {
	return c.store.GetStudy(ctx, studyID)
}

// ExportResult carries the stored JSON rendering of an indexed run or study.
type ExportResult struct {
	Kind string `json:"kind"` // "study" or "analysis_run"
	ID   string `json:"id"`
	Data []byte `json:"-"`
}

// Export re-emits a stored record by ID. Studies export their original wire
// report bytes; analysis runs export their index record.
func (c *Client) Export(ctx context.Context, id string) (ExportResult, error) {
	study, ok, err := c.store.GetStudy(ctx, id)
	if err != nil {
		return ExportResult{}, err
	}
	if ok {
		return ExportResult{Kind: "study", ID: id, Data: study.ReportJSON}, nil
	}

	run, ok, err := c.store.GetAnalysisRun(ctx, id)
	if err != nil {
		return ExportResult{}, err
	}
	if !ok {
		return ExportResult{}, fmt.Errorf("no run or study indexed under id: %s", id)
	}
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return ExportResult{}, err
	}
	return ExportResult{Kind: "analysis_run", ID: id, Data: append(data, '\n')}, nil
}
