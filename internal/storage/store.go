package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/rocketsim/internal/flightlog"
)

const (
	metadataFile = "metadata.json"
	flightFile   = "flight.csv"
)

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
	Name      string             `json:"name,omitempty"`
	Model     string             `json:"model"`
	Timestamp time.Time          `json:"timestamp"`
	Solver    string             `json:"solver"`
	Event     string             `json:"event"`
	Accepted  int                `json:"accepted"`
	Rejected  int                `json:"rejected"`
	Vehicle   map[string]float64 `json:"vehicle"`
	Summary   flightlog.Summary  `json:"summary"`
}

// Save writes the metadata and the flight log into a new run directory and
// returns the run ID. An empty meta.ID is replaced by a random UUID.
func (s *Store) Save(meta RunMetadata, log *flightlog.Log) (string, error) {
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if log != nil {
		meta.Summary = flightlog.Summarize(log)
	}

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

	if log == nil {
		return meta.ID, nil
	}

	csvFile, err := os.Create(filepath.Join(runDir, flightFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := flightlog.WriteCSV(csvFile, log); err != nil {
		return "", fmt.Errorf("write flight log: %w", err)
	}

	return meta.ID, nil
}

// List returns the stored runs, newest first. Directories without readable
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})

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

func (s *Store) LoadLog(runID string) (*flightlog.Log, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, flightFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return flightlog.ReadCSV(file)
}
