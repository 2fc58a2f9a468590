package model

// PageTask is one discovered URL and its position in discovery order.
type PageTask struct {
	URL   string
	Index int
}

// PageResult is a successfully fetched page.
type PageResult struct {
	URL         string `json:"url"`
	Index       int    `json:"index"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Markdown    string `json:"markdown"`
}

// PageOutcome is the settled result of one PageTask: exactly one of Result
// and Failure is set.
type PageOutcome struct {
	Task    PageTask
	Result  *PageResult
	Failure *PageError
}

// Succeeded reports whether the outcome carries a PageResult.
func (o PageOutcome) Succeeded() bool {
	return o.Result != nil
}

// Summary is the editorial title and description produced for a page.
type Summary struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Credentials are the caller-supplied API keys for one generation.
type Credentials struct {
	FirecrawlKey string
	OpenAIKey    string
}

// HasFullAccess reports whether the caller brought their own crawl key.
func (c Credentials) HasFullAccess() bool {
	return c.FirecrawlKey != ""
}

// GeneratedDocuments holds the two artifacts of a generation.
type GeneratedDocuments struct {
	LLMSTxt     string
	LLMSFullTxt string
}
