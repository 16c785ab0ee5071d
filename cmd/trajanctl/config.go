package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"trajan/internal/metrics"
	"trajan/internal/model"
	"trajan/internal/vecmath"
)

// loadTrajectory reads an ordered point sequence from a .json or .csv file.
//
// JSON: an array of {"sequence_index", "label", "weight", "coordinates":[x,y,z]}.
// CSV: header sequence_index,label,weight,x,y,z followed by one row per point.
func loadTrajectory(path string) ([]model.TrajectoryPoint, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadTrajectoryJSON(path)
	case ".csv":
		return loadTrajectoryCSV(path)
	default:
		return nil, fmt.Errorf("unsupported trajectory format %q (want .json or .csv)", filepath.Ext(path))
	}
}

func loadTrajectoryJSON(path string) ([]model.TrajectoryPoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var points []model.TrajectoryPoint
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, fmt.Errorf("parse trajectory %s: %w", path, err)
	}
	return points, nil
}

func loadTrajectoryCSV(path string) ([]model.TrajectoryPoint, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read trajectory header %s: %w", path, err)
	}
	if len(header) < 6 {
		return nil, fmt.Errorf("trajectory csv %s must have at least 6 columns", path)
	}

	points := make([]model.TrajectoryPoint, 0, 64)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		point, err := pointFromRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		points = append(points, point)
	}
	return points, nil
}

func pointFromRecord(record []string) (model.TrajectoryPoint, error) {
	if len(record) < 6 {
		return model.TrajectoryPoint{}, fmt.Errorf("row must have at least 6 columns")
	}
	seq, err := strconv.Atoi(strings.TrimSpace(record[0]))
	if err != nil {
		return model.TrajectoryPoint{}, fmt.Errorf("sequence_index: %w", err)
	}
	weight, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
	if err != nil {
		return model.TrajectoryPoint{}, fmt.Errorf("weight: %w", err)
	}
	var coords vecmath.Vec3
	for i := 0; i < 3; i++ {
		coords[i], err = strconv.ParseFloat(strings.TrimSpace(record[3+i]), 64)
		if err != nil {
			return model.TrajectoryPoint{}, fmt.Errorf("coordinate %d: %w", i, err)
		}
	}
	return model.TrajectoryPoint{
		SequenceIndex: seq,
		Label:         strings.TrimSpace(record[1]),
		Weight:        weight,
		Coordinates:   coords,
	}, nil
}

type metricsConfigFile struct {
	InfluenceTags       []string   `json:"influence_tags"`
	ProductivityTags    []string   `json:"productivity_tags"`
	CreativityArchetype string     `json:"creativity_archetype"`
	InfluenceBase       *[3]float64 `json:"influence_base"`
	ProductivityBase    *[3]float64 `json:"productivity_base"`
}

// loadMetricsConfig reads an analysis config file; an empty path yields the
// engine defaults.
func loadMetricsConfig(path string) (metrics.Config, error) {
	cfg := metrics.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return metrics.Config{}, err
	}
	var file metricsConfigFile
	if err := json.Unmarshal(data, &file); err != nil {
		return metrics.Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if len(file.InfluenceTags) > 0 {
		cfg.InfluenceTags = file.InfluenceTags
	}
	if len(file.ProductivityTags) > 0 {
		cfg.ProductivityTags = file.ProductivityTags
	}
	if file.CreativityArchetype != "" {
		cfg.CreativityArchetype = file.CreativityArchetype
	}
	if file.InfluenceBase != nil {
		base := vecmath.Vec3(*file.InfluenceBase)
		cfg.InfluenceBase = &base
	}
	if file.ProductivityBase != nil {
		base := vecmath.Vec3(*file.ProductivityBase)
		cfg.ProductivityBase = &base
	}
	return cfg, nil
}

func parseLengths(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	lengths := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		length, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("parse -lengths: %w", err)
		}
		lengths = append(lengths, length)
	}
	if len(lengths) == 0 {
		return nil, fmt.Errorf("-lengths must name at least one trajectory length")
	}
	return lengths, nil
}
