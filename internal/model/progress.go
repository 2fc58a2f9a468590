package model

// Status is the externally visible phase of a generation run.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusMapping    Status = "mapping"
	StatusScraping   Status = "scraping"
	StatusGenerating Status = "generating"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Terminal reports whether no snapshot may follow one with this status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// ProgressSnapshot is one immutable status record pushed to the client.
type ProgressSnapshot struct {
	Status        Status      `json:"status"`
	TotalURLs     int         `json:"totalUrls"`
	ProcessedURLs int         `json:"processedUrls"`
	CurrentURL    string      `json:"currentUrl,omitempty"`
	Errors        []PageError `json:"errors"`
	Files         *Files      `json:"files,omitempty"`
}

// PageError is one entry of a snapshot's error list. URL is empty for
// run-level failures.
type PageError struct {
	URL     string `json:"url,omitempty"`
	Message string `json:"message"`
}

// Files carries the generated documents on the completed snapshot.
type Files struct {
	LLMSTxt     string `json:"llmsTxt,omitempty"`
	LLMSFullTxt string `json:"llmsFullTxt,omitempty"`
}
