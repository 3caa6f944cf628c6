package serve

// The WebUI sends either code or content for analyze, and either prompt or
// content for generate; the first non-empty one wins.

type AnalyzeRequest struct {
	Model   string `json:"model"`
	Code    string `json:"code"`
	Content string `json:"content"`
}

type AnalyzeResponse struct {
	OK     bool     `json:"ok"`
	Output string   `json:"output"`
	Logs   []string `json:"logs"`
}

type GenerateRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	Content string `json:"content"`
}

type GenerateResponse struct {
	OK   bool     `json:"ok"`
	DSL  string   `json:"dsl"`
	Logs []string `json:"logs"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}
