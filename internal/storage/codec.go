package storage

import (
	"encoding/json"

	"trajan/internal/model"
)

func EncodeAnalysisRun(record model.AnalysisRunRecord) ([]byte, error) {
	return json.Marshal(record)
}

func DecodeAnalysisRun(data []byte) (model.AnalysisRunRecord, error) {
	var record model.AnalysisRunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.AnalysisRunRecord{}, err
	}
	return record, nil
}

func EncodeStudy(record model.StudyRecord) ([]byte, error) {
	return json.Marshal(record)
}

func DecodeStudy(data []byte) (model.StudyRecord, error) {
	var record model.StudyRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.StudyRecord{}, err
	}
	return record, nil
}
