package result

import (
	"strings"
	"time"

	"github.com/mehdihou95/middleware-mapper/internal/mapping"
)

// Status is the processing state of one document attempt
type Status string

const (
	StatusProcessing Status = "PROCESSING"
	StatusSuccess    Status = "SUCCESS"
	StatusError      Status = "ERROR"
)

// maxTrailLen bounds the human-readable error trail
const maxTrailLen = 1000

// ProcessingResult is one record per document-processing attempt. It is
// created in PROCESSING state and moved exactly once to a terminal state.
type ProcessingResult struct {
	ID             string     `json:"id"`
	FileName       string     `json:"fileName"`
	ClientID       string     `json:"clientId"`
	InterfaceID    string     `json:"interfaceId"`
	DocType        string     `json:"docType"`
	Status         Status     `json:"status"`
	ErrorTrail     string     `json:"errorTrail,omitempty"`
	HeaderID       string     `json:"headerId,omitempty"`
	LinesPersisted int        `json:"linesPersisted"`
	LinesFailed    int        `json:"linesFailed"`
	CreatedAt      time.Time  `json:"createdAt"`
	FinishedAt     *time.Time `json:"finishedAt,omitempty"`
}

// New creates a result in PROCESSING state for one document attempt
func New(fileName, clientID string, iface mapping.Interface) *ProcessingResult {
	return &ProcessingResult{
		FileName:    fileName,
		ClientID:    clientID,
		InterfaceID: iface.ID,
		DocType:     iface.DocType,
		Status:      StatusProcessing,
		CreatedAt:   time.Now().UTC(),
	}
}

// AppendError adds a message to the bounded error trail. Once the trail is
// full it is truncated with a marker and further appends are dropped.
func (r *ProcessingResult) AppendError(msg string) {
	if msg == "" || strings.HasSuffix(r.ErrorTrail, "...") {
		return
	}
	if r.ErrorTrail == "" {
		r.ErrorTrail = msg
	} else {
		r.ErrorTrail += "; " + msg
	}
	if len(r.ErrorTrail) > maxTrailLen {
		r.ErrorTrail = r.ErrorTrail[:maxTrailLen-3] + "..."
	}
}

// MarkSuccess moves the result to its terminal SUCCESS state
func (r *ProcessingResult) MarkSuccess() {
	r.terminal(StatusSuccess)
}

// MarkError moves the result to its terminal ERROR state
func (r *ProcessingResult) MarkError() {
	r.terminal(StatusError)
}

// Terminal reports whether the result reached a terminal state
func (r *ProcessingResult) Terminal() bool {
	return r.Status == StatusSuccess || r.Status == StatusError
}

func (r *ProcessingResult) terminal(s Status) {
	if r.Terminal() {
		return
	}
	r.Status = s
	now := time.Now().UTC()
	r.FinishedAt = &now
}
