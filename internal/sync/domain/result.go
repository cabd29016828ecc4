package domain

// SyncResult is the outcome of one batch run for a single user.
type SyncResult struct {
	UserID       string `json:"userId"`
	Processed    int    `json:"processed"`
	Successful   int    `json:"successful"`
	Failed       int    `json:"failed"`
	DeletedPages int    `json:"deletedPages"`
	Message      string `json:"message,omitempty"`
	Error        string `json:"error,omitempty"`
}

// BatchResult aggregates the per-user results of one invocation.
type BatchResult struct {
	Success    bool         `json:"success"`
	Message    string       `json:"message,omitempty"`
	Results    []SyncResult `json:"results"`
	TotalUsers int          `json:"totalUsers"`
	Error      string       `json:"error,omitempty"`
	Details    string       `json:"details,omitempty"`
}
