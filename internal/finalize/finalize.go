// Package finalize persists analysis results as tamper-evident, reproducible
// artifacts: the serialized summary, a SHA-256 checksum manifest, and a
// provenance record. Writes are atomic (temp file, fsync, rename) so a
// concurrent reader never observes a partially written artifact.
package finalize

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"trajan/internal/model"
)

// Options configures one finalization pass. The zero value is usable:
// timestamps come from the wall clock and the seed is recorded as zero.
type Options struct {
	// Seed is recorded in provenance for reproducibility verification.
	Seed int64

	// Timestamp, when non-zero, replaces the wall clock in the provenance
	// record. Two runs finalized with the same timestamp and seed produce
	// byte-identical artifact sets.
	Timestamp time.Time

	// MarkReadOnly requests a best-effort chmod of finalized files.
	MarkReadOnly bool
}

// Provenance proves how and when a summary was produced. It is written
// alongside the checksum manifest and never re-derived.
type Provenance struct {
	RuntimeVersion string  `json:"runtime_version"`
	OS             string  `json:"os"`
	Arch           string  `json:"arch"`
	Revision       *string `json:"revision"`
	Seed           int64   `json:"seed"`
	TimestampUTC   string  `json:"timestamp_utc"`
}

// Result reports what one finalization pass wrote.
type Result struct {
	Dir          string
	AnalysisPath string
	SummaryPath  string
	ManifestPath string
	ProvenancePath string
	// Checksums maps artifact filename to its SHA-256 hex digest.
	Checksums map[string]string
}

type analysisArtifact struct {
	Summary model.EfficiencySummary `json:"summary"`
	Vectors model.VectorSet         `json:"vectors"`
}

// Finalize validates the summary, then writes the artifact set for runID
// under dir. The checksum manifest covers the content artifacts; the
// provenance record sits alongside it and carries the timestamp, so checksums
// stay identical across runs regardless of when they happen.
//
// Concurrent finalization of different run IDs is safe; finalizing the same
// run ID concurrently is the caller's responsibility to serialize.
func Finalize(dir, runID string, vectors model.VectorSet, summary model.EfficiencySummary, opts Options) (Result, error) {
	if strings.TrimSpace(runID) == "" {
		return Result{}, fmt.Errorf("run id is required")
	}
	if err := ValidateSummary(summary); err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, err
	}

	analysisData, err := marshalIndented(analysisArtifact{Summary: summary, Vectors: vectors})
	if err != nil {
		return Result{}, err
	}
	summaryText := renderSummaryText(runID, summary)

	artifacts := map[string][]byte{
		runID + "-analysis-final.json": analysisData,
		runID + "-summary.txt":         []byte(summaryText),
	}

	checksums := make(map[string]string, len(artifacts))
	names := make([]string, 0, len(artifacts))
	for name := range artifacts {
		names = append(names, name)
	}
	sort.Strings(names)

	written := make([]string, 0, len(artifacts)+2)
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := writeFileAtomic(path, artifacts[name], 0o644); err != nil {
			return Result{}, err
		}
		written = append(written, path)
		sum := sha256.Sum256(artifacts[name])
		checksums[name] = hex.EncodeToString(sum[:])
	}

	manifestPath := filepath.Join(dir, runID+"-checksums.txt")
	if err := writeFileAtomic(manifestPath, []byte(renderManifest(checksums)), 0o644); err != nil {
		return Result{}, err
	}
	written = append(written, manifestPath)

	provenancePath := filepath.Join(dir, runID+"-provenance.json")
	provenanceData, err := marshalIndented(buildProvenance(opts))
	if err != nil {
		return Result{}, err
	}
	if err := writeFileAtomic(provenancePath, provenanceData, 0o644); err != nil {
		return Result{}, err
	}
	written = append(written, provenancePath)

	if opts.MarkReadOnly {
		for _, path := range written {
			// Best effort; platforms without chmod semantics are fine.
			_ = os.Chmod(path, 0o444)
		}
	}

	return Result{
		Dir:            dir,
		AnalysisPath:   filepath.Join(dir, runID+"-analysis-final.json"),
		SummaryPath:    filepath.Join(dir, runID+"-summary.txt"),
		ManifestPath:   manifestPath,
		ProvenancePath: provenancePath,
		Checksums:      checksums,
	}, nil
}

// ValidateSummary checks required fields and documented numeric ranges.
// It fails with SchemaValidationError naming the first offending field.
func ValidateSummary(summary model.EfficiencySummary) error {
	if summary.EfficiencyScore < -1 || summary.EfficiencyScore > 1 {
		return &model.SchemaValidationError{Field: "efficiency_score", Reason: fmt.Sprintf("%v outside [-1, 1]", summary.EfficiencyScore)}
	}
	if summary.BalanceFactorDegrees < 0 || summary.BalanceFactorDegrees > 180 {
		return &model.SchemaValidationError{Field: "balance_factor_degrees", Reason: fmt.Sprintf("%v outside [0, 180]", summary.BalanceFactorDegrees)}
	}
	angles := []struct {
		name  string
		value float64
	}{
		{"pairwise_angles.influence_productivity", summary.PairwiseAngles.InfluenceProductivity},
		{"pairwise_angles.influence_creativity", summary.PairwiseAngles.InfluenceCreativity},
		{"pairwise_angles.productivity_creativity", summary.PairwiseAngles.ProductivityCreativity},
	}
	for _, a := range angles {
		if a.value < 0 || a.value > 180 {
			return &model.SchemaValidationError{Field: a.name, Reason: fmt.Sprintf("%v outside [0, 180]", a.value)}
		}
	}
	switch summary.Classification {
	case model.ClassificationAligned, model.ClassificationImbalanced, model.ClassificationFragmented:
	default:
		return &model.SchemaValidationError{Field: "classification", Reason: fmt.Sprintf("unknown value %q", summary.Classification)}
	}
	if len(summary.Interpretation) == 0 {
		return &model.SchemaValidationError{Field: "interpretation", Reason: "must not be empty"}
	}
	return nil
}

func buildProvenance(opts Options) Provenance {
	ts := opts.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return Provenance{
		RuntimeVersion: runtime.Version(),
		OS:             runtime.GOOS,
		Arch:           runtime.GOARCH,
		Revision:       vcsRevision(),
		Seed:           opts.Seed,
		TimestampUTC:   ts.UTC().Format(time.RFC3339),
	}
}

func vcsRevision() *string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && setting.Value != "" {
			rev := setting.Value
			return &rev
		}
	}
	return nil
}

func renderManifest(checksums map[string]string) string {
	names := make([]string, 0, len(checksums))
	for name := range checksums {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s  %s\n", checksums[name], name)
	}
	return b.String()
}

func renderSummaryText(runID string, summary model.EfficiencySummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Trajectory efficiency analysis %s\n", runID)
	fmt.Fprintf(&b, "classification: %s\n", summary.Classification)
	fmt.Fprintf(&b, "efficiency score: %.6f\n", summary.EfficiencyScore)
	fmt.Fprintf(&b, "balance factor: %.2f deg\n\n", summary.BalanceFactorDegrees)
	for _, line := range summary.Interpretation {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	return b.String()
}

func marshalIndented(value any) ([]byte, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// writeFileAtomic writes data to a temp file in the target directory, syncs
// it, then renames over path. A crash mid-write leaves the previous state.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op when the rename already succeeded.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
