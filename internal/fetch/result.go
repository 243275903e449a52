package fetch

import "time"

// Result captures the outcome of a single fetch attempt. Failed fetches
// are reported as results too; errors never cross the pipeline boundary.
type Result struct {
	URL        string            `json:"url"`
	StatusCode int               `json:"status_code"`
	Body       string            `json:"body,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
	Elapsed    time.Duration     `json:"elapsed"`
	Error      string            `json:"error,omitempty"`
	FromCache  bool              `json:"from_cache"`
}

// Success is true iff the status is in [200, 399] and no error is set
func (r *Result) Success() bool {
	return r.Error == "" && r.StatusCode >= 200 && r.StatusCode < 400
}
