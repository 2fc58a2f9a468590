package model

// GenerateRequest is the inbound body of POST /generate.
type GenerateRequest struct {
	URL             string `json:"url"`
	MaxURLs         int    `json:"maxUrls,omitempty"`
	FirecrawlAPIKey string `json:"firecrawlApiKey,omitempty"`
	OpenAIAPIKey    string `json:"openaiApiKey,omitempty"`
}

// Credentials extracts the caller's keys.
func (r GenerateRequest) Credentials() Credentials {
	return Credentials{FirecrawlKey: r.FirecrawlAPIKey, OpenAIKey: r.OpenAIAPIKey}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the JSON shape returned on failure.
type ErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}
