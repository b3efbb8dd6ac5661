package events

import (
	"encoding/json"
	"time"
)

// Event is the envelope pushed over the SSE stream. The board frontend
// switches on Type: "jobs_ingested" after a run that added rows,
// "job_created" / "job_deleted" for single-row changes, "ping" on
// connect. Version lets the payload shape evolve without breaking old
// listeners.
type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// MakeEvent marshals one envelope to the wire string Publish takes.
// reqID may be empty for events not caused by an HTTP request, such as
// scheduled ingestion runs.
func MakeEvent(reqID, typ string, v int, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:      typ,
		Version:   v,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}
