package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/twolink/internal/sim"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

var ErrBadSample = errors.New("storage: malformed sample row")

var sampleHeader = []string{
	"t", "q1", "q2", "x", "y", "s1", "s2",
	"cmd_q1", "cmd_q2", "cmd_x", "cmd_y", "moving",
}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Kind      string             `json:"kind"`
	Preset    string             `json:"preset"`
	Timestamp time.Time          `json:"timestamp"`
	Tick      float64            `json:"tick"`
	Targets   []sim.Target       `json:"targets"`
	Rejected  []sim.Rejection    `json:"rejected"`
	Reached   int                `json:"reached"`
	Stopped   bool               `json:"stopped"`
	Elapsed   float64            `json:"elapsed"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes metadata.json and samples.csv under a new run directory and
// returns the run id. Result fields override the matching metadata fields.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Kind, now.UnixNano())
	meta.Timestamp = now
	meta.Rejected = result.Rejected
	meta.Reached = result.Reached
	meta.Stopped = result.Stopped
	meta.Elapsed = result.Elapsed.Seconds()
	meta.Metrics = result.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, samplesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(sampleHeader); err != nil {
		return "", err
	}
	for _, smp := range result.Samples {
		if err := w.Write(formatSample(smp)); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return meta.ID, nil
}

// List returns all stored runs, oldest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadSamples(runID string) ([]sim.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(sampleHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Sample{}, nil
	}

	samples := make([]sim.Sample, 0, len(records)-1)
	for i, record := range records[1:] {
		smp, err := parseSample(record)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		samples = append(samples, smp)
	}

	return samples, nil
}

func formatSample(s sim.Sample) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	return []string{
		f(s.T), f(s.Q1), f(s.Q2), f(s.X), f(s.Y),
		strconv.FormatInt(s.S1, 10), strconv.FormatInt(s.S2, 10),
		f(s.CmdQ1), f(s.CmdQ2), f(s.CmdX), f(s.CmdY),
		strconv.FormatBool(s.Moving),
	}
}

func parseSample(rec []string) (sim.Sample, error) {
	var vals [9]float64
	floatCols := []int{0, 1, 2, 3, 4, 7, 8, 9, 10}
	for i, col := range floatCols {
		v, err := strconv.ParseFloat(rec[col], 64)
		if err != nil {
			return sim.Sample{}, fmt.Errorf("%w: %s: %v", ErrBadSample, sampleHeader[col], err)
		}
		vals[i] = v
	}
	s1, err := strconv.ParseInt(rec[5], 10, 64)
	if err != nil {
		return sim.Sample{}, fmt.Errorf("%w: s1: %v", ErrBadSample, err)
	}
	s2, err := strconv.ParseInt(rec[6], 10, 64)
	if err != nil {
		return sim.Sample{}, fmt.Errorf("%w: s2: %v", ErrBadSample, err)
	}
	moving, err := strconv.ParseBool(rec[11])
	if err != nil {
		return sim.Sample{}, fmt.Errorf("%w: moving: %v", ErrBadSample, err)
	}

	return sim.Sample{
		T: vals[0], Q1: vals[1], Q2: vals[2], X: vals[3], Y: vals[4],
		S1: s1, S2: s2,
		CmdQ1: vals[5], CmdQ2: vals[6], CmdX: vals[7], CmdY: vals[8],
		Moving: moving,
	}, nil
}
