package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/planr/internal/store"
)

type jsonExport struct {
	ExportedAt string               `json:"exported_at"`
	User       string               `json:"user"`
	Counts     map[string]int       `json:"counts"`
	Tasks      []store.Task         `json:"tasks"`
	Notes      []store.Note         `json:"notes"`
	Plans      []store.CalendarPlan `json:"plans"`
	Sessions   []jsonSession        `json:"sessions"`
}

type jsonSession struct {
	store.TimerSession
	Formatted string `json:"formatted"`
}

// ToJSON writes a pretty-printed dump of every collection.
func ToJSON(d Data, user, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		User:       user,
		Counts: map[string]int{
			"tasks":    len(d.Tasks),
			"notes":    len(d.Notes),
			"plans":    len(d.Plans),
			"sessions": len(d.Sessions),
		},
		Tasks: d.Tasks,
		Notes: d.Notes,
		Plans: d.Plans,
	}
	for _, s := range d.Sessions {
		export.Sessions = append(export.Sessions, jsonSession{TimerSession: s, Formatted: formatDuration(s.Duration)})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
