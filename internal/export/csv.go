// Package export writes planner data to CSV, JSON and iCalendar files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/planr/internal/store"
)

// Data is a snapshot of every collection.
type Data struct {
	Tasks    []store.Task
	Notes    []store.Note
	Plans    []store.CalendarPlan
	Sessions []store.TimerSession
}

var csvHeader = []string{"Kind", "ID", "Date", "Title", "Done", "Duration (s)", "Duration"}

// ToCSV writes tasks and timer sessions as one table. Notes and plans have
// no tabular shape worth exporting and are skipped.
func ToCSV(d Data, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, t := range d.Tasks {
		row := []string{
			"task",
			strconv.FormatInt(t.ID, 10),
			t.DateISO,
			t.Title,
			strconv.FormatBool(t.Done),
			"",
			"",
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	for _, s := range d.Sessions {
		row := []string{
			"session",
			strconv.FormatInt(s.ID, 10),
			s.Date,
			"",
			"",
			strconv.FormatInt(s.Duration, 10),
			formatDuration(s.Duration),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
