package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/SoarinFerret/TimerWarden/internal/timer"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Export is the document handed to the user when they back up their data.
type Export struct {
	ExportDate    string        `json:"exportDate" yaml:"exportDate"`
	AppVersion    string        `json:"appVersion" yaml:"appVersion"`
	TotalTimers   int           `json:"totalTimers" yaml:"totalTimers"`
	History       []Item        `json:"history" yaml:"history"`
	CurrentTimers []timer.Timer `json:"currentTimers" yaml:"currentTimers"`
}

// Export builds the document from the log and the live timers.
func (l *Log) Export(ctx context.Context, current []timer.Timer) Export {
	if current == nil {
		current = []timer.Timer{}
	}
	return Export{
		ExportDate:    l.clock.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		AppVersion:    l.version,
		TotalTimers:   len(current),
		History:       l.Items(ctx),
		CurrentTimers: current,
	}
}

// Render encodes e as format.
func Render(e Export, format string) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		return json.MarshalIndent(e, "", "  ")
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(e); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unsupported export format %q", format)
}
