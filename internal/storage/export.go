package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	ID         string             `json:"id"`
	Scenario   string             `json:"scenario"`
	Integrator string             `json:"integrator"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Columns    []string           `json:"columns"`
	Steps      int                `json:"steps"`
	Times      []float64          `json:"times"`
	States     [][]float64        `json:"states"`
	Metrics    map[string]float64 `json:"metrics"`
}

// ExportJSON writes a stored run as a single JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	states, times, err := s.LoadStates(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		ID:         meta.ID,
		Scenario:   meta.Scenario,
		Integrator: meta.Integrator,
		Dt:         meta.Dt,
		Duration:   meta.Duration,
		Columns:    meta.Columns,
		Steps:      len(times),
		Times:      times,
		States:     states,
		Metrics:    meta.Metrics,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
