package storage

import (
	"context"

	"trajan/internal/model"
)

// Store persists the run index: one record per finalized analysis and one
// per optimizer study. Artifacts themselves live on disk; the store only
// answers "what ran, when, with what outcome".
type Store interface {
	Init(ctx context.Context) error
	SaveAnalysisRun(ctx context.Context, record model.AnalysisRunRecord) error
	GetAnalysisRun(ctx context.Context, runID string) (model.AnalysisRunRecord, bool, error)
	ListAnalysisRuns(ctx context.Context, limit int) ([]model.AnalysisRunRecord, error)
	SaveStudy(ctx context.Context, record model.StudyRecord) error
	GetStudy(ctx context.Context, studyID string) (model.StudyRecord, bool, error)
	ListStudies(ctx context.Context, limit int) ([]model.StudyRecord, error)
}
