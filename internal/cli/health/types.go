// Package health mirrors the server's /healthz envelope so the CLI can
// decode it without importing server packages.
package health

// Details is the liveness payload under the envelope's data field.
type Details struct {
	Service   string `json:"service"`
	StartedAt string `json:"started_at"`
	Uptime    string `json:"uptime"`
	UptimeSec int64  `json:"uptime_sec"`
}

// Response is the /healthz response envelope.
type Response struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	Data      Details `json:"data"`
	Error     string  `json:"error,omitempty"`
}
