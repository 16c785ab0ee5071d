package storage

import (
	"context"
	"sort"
	"sync"

	"trajan/internal/model"
)

type MemoryStore struct {
	mu      sync.RWMutex
	runs    map[string]model.AnalysisRunRecord
	studies map[string]model.StudyRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = make(map[string]model.AnalysisRunRecord)
	s.studies = make(map[string]model.StudyRecord)
	return nil
}

func (s *MemoryStore) SaveAnalysisRun(_ context.Context, record model.AnalysisRunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[record.RunID] = record
	return nil
}

func (s *MemoryStore) GetAnalysisRun(_ context.Context, runID string) (model.AnalysisRunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.runs[runID]
	return record, ok, nil
}

func (s *MemoryStore) ListAnalysisRuns(_ context.Context, limit int) ([]model.AnalysisRunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]model.AnalysisRunRecord, 0, len(s.runs))
	for _, record := range s.runs {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAtUTC == records[j].CreatedAtUTC {
			return records[i].RunID < records[j].RunID
		}
		return records[i].CreatedAtUTC > records[j].CreatedAtUTC
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (s *MemoryStore) SaveStudy(_ context.Context, record model.StudyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := record
	copied.Lengths = append([]int(nil), record.Lengths...)
	copied.ReportJSON = append([]byte(nil), record.ReportJSON...)
	s.studies[record.StudyID] = copied
	return nil
}

func (s *MemoryStore) GetStudy(_ context.Context, studyID string) (model.StudyRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.studies[studyID]
	if !ok {
		return model.StudyRecord{}, false, nil
	}
	copied := record
	copied.Lengths = append([]int(nil), record.Lengths...)
	copied.ReportJSON = append([]byte(nil), record.ReportJSON...)
	return copied, true, nil
}

func (s *MemoryStore) ListStudies(_ context.Context, limit int) ([]model.StudyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]model.StudyRecord, 0, len(s.studies))
	for _, record := range s.studies {
		copied := record
		copied.Lengths = append([]int(nil), record.Lengths...)
		copied.ReportJSON = append([]byte(nil), record.ReportJSON...)
		records = append(records, copied)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAtUTC == records[j].CreatedAtUTC {
			return records[i].StudyID < records[j].StudyID
		}
		return records[i].CreatedAtUTC > records[j].CreatedAtUTC
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
