package storage

import (
	"encoding/json"
	"os"

	"github.com/san-kum/rocketsim/internal/flightlog"
)

type ExportData struct {
	Meta    RunMetadata `json:"meta"`
	Columns []string    `json:"columns"`
	Rows    [][]float64 `json:"rows"`
}

// ExportJSON writes a run and its full log as a single JSON document.
func ExportJSON(path string, meta RunMetadata, log *flightlog.Log) error {
	data := ExportData{
		Meta:    meta,
		Columns: log.Columns(),
		Rows:    make([][]float64, log.Len()),
	}
	for i := range data.Rows {
		data.Rows[i] = log.Row(i)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
