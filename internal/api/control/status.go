package control

import "github.com/oshokin/game-launcher/internal/domain/setup"

// StatusResponse is the JSON rendering of a snapshot.
type StatusResponse struct {
	Title          string   `json:"title"`
	Phase          string   `json:"phase"`
	Current        string   `json:"current,omitempty"`
	Pending        []string `json:"pending"`
	NextLabel      string   `json:"next_label,omitempty"`
	Status         string   `json:"status"`
	ProgressRatio  float64  `json:"progress_ratio"`
	ProgressBytes  int64    `json:"progress_bytes"`
	TotalBytes     int64    `json:"total_bytes"`
	FailedAction   string   `json:"failed_action,omitempty"`
	FailureReason  string   `json:"failure_reason,omitempty"`
	TriggerEnabled bool     `json:"trigger_enabled"`
	Hidden         bool     `json:"hidden"`
	Revision       uint64   `json:"revision"`
}

// newStatusResponse converts a snapshot for the API.
func newStatusResponse(snapshot setup.Snapshot, revision uint64) StatusResponse {
	pending := make([]string, 0, len(snapshot.Pending))
	for _, kind := range snapshot.Pending {
		pending = append(pending, kind.String())
	}

	response := StatusResponse{
		Title:          snapshot.Title,
		Phase:          string(snapshot.Phase),
		Pending:        pending,
		NextLabel:      snapshot.NextLabel,
		Status:         snapshot.Status,
		ProgressRatio:  snapshot.Progress.Ratio(),
		ProgressBytes:  snapshot.Progress.Current,
		TotalBytes:     snapshot.Progress.Total,
		FailureReason:  snapshot.FailureReason,
		TriggerEnabled: snapshot.TriggerEnabled(),
		Hidden:         snapshot.Hidden,
		Revision:       revision,
	}

	if snapshot.Running() {
		response.Current = snapshot.Current.String()
	}

	if snapshot.FailedAction != 0 {
		response.FailedAction = snapshot.FailedAction.String()
	}

	return response
}
