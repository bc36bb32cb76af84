package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/rocketsim/internal/flightlog"
)

func testLog(t *testing.T) *flightlog.Log {
	t.Helper()
	l := flightlog.New([]string{"altitude", "velocity", "acceleration"})
	for i, row := range [][]float64{{0, 10, -9.8}, {0.99, 9.8, -9.8}, {1.96, 9.6, -9.8}} {
		if err := l.Append(float64(i)*0.1, row); err != nil {
			t.Fatal(err)
		}
	}
	return l
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta := RunMetadata{
		Model:    "1dof",
		Solver:   "rk4(h=0.1)",
		Event:    "max_steps",
		Accepted: 2,
		Vehicle:  map[string]float64{"mass": 10},
	}

	runID, err := st.Save(meta, testLog(t))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if _, err := uuid.Parse(runID); err != nil {
		t.Errorf("run id %q is not a uuid: %v", runID, err)
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Model != "1dof" {
		t.Errorf("expected model '1dof', got '%s'", loaded.Model)
	}
	if loaded.Vehicle["mass"] != 10 {
		t.Errorf("expected mass 10, got %f", loaded.Vehicle["mass"])
	}
	if loaded.Summary.Rows != 3 || loaded.Summary.Apogee != 1.96 {
		t.Errorf("unexpected summary %+v", loaded.Summary)
	}
	if loaded.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}

	log, err := st.LoadLog(runID)
	if err != nil {
		t.Fatalf("load log failed: %v", err)
	}
	if log.Len() != 3 || log.Cols() != 4 {
		t.Errorf("expected 3x4 log, got %dx%d", log.Len(), log.Cols())
	}
	if log.Value(2, 1) != 1.96 {
		t.Errorf("altitude = %v", log.Value(2, 1))
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := st.Save(RunMetadata{ID: "old", Model: "1dof", Timestamp: old}, nil); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := st.Save(RunMetadata{ID: "new", Model: "3dof", Timestamp: old.Add(time.Hour)}, testLog(t)); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "new" || runs[1].ID != "old" {
		t.Errorf("expected newest first, got %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(RunMetadata{Model: "1dof"}, testLog(t))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	metaPath := filepath.Join(runDir, "metadata.json")
	csvPath := filepath.Join(runDir, "flight.csv")

	if _, err := os.Stat(metaPath); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}

	if _, err := os.Stat(csvPath); os.IsNotExist(err) {
		t.Error("flight.csv not created")
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	if err := ExportJSON(path, RunMetadata{ID: "abc", Model: "1dof"}, testLog(t)); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Meta.ID != "abc" || len(data.Rows) != 3 || data.Columns[0] != "time" {
		t.Errorf("unexpected export %+v", data)
	}
}
