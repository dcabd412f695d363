package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/sofmeright/bandbox/src/lint"
)

type jsonReport struct {
	RunID     string      `json:"run_id"`
	Started   time.Time   `json:"started"`
	ElapsedMS int64       `json:"elapsed_ms"`
	Summary   jsonSummary `json:"summary"`
	Rules     []jsonRule  `json:"rules"`
}

type jsonSummary struct {
	OK      int `json:"ok"`
	Fail    int `json:"fail"`
	Errored int `json:"errored"`
}

type jsonRule struct {
	ID          string      `json:"id"`
	Description string      `json:"description"`
	Status      lint.Status `json:"status"`
	Label       string      `json:"label"`
	Findings    []string    `json:"findings"`
	Omitted     int         `json:"omitted,omitempty"`
	Error       string      `json:"error,omitempty"`
	ElapsedMS   float64     `json:"elapsed_ms"`
}

// WriteJSON writes a machine-readable report. payloads must be the
// classified form of rs.Rules, in the same order.
func WriteJSON(w io.Writer, rs lint.Results, payloads []Payload) error {
	ok, fail, errored := rs.Counts()
	report := jsonReport{
		RunID:     rs.RunID,
		Started:   rs.Started,
		ElapsedMS: rs.Elapsed.Milliseconds(),
		Summary:   jsonSummary{OK: ok, Fail: fail, Errored: errored},
		Rules:     make([]jsonRule, len(payloads)),
	}
	for i, p := range payloads {
		items := p.Items
		if items == nil {
			items = []string{}
		}
		jr := jsonRule{
			ID:          p.RuleID,
			Description: p.Description,
			Status:      p.Status,
			Label:       p.Label,
			Findings:    items,
			Omitted:     p.Omitted,
			Error:       p.Error,
		}
		if i < len(rs.Rules) {
			jr.ElapsedMS = float64(rs.Rules[i].Elapsed.Microseconds()) / 1000
		}
		report.Rules[i] = jr
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
