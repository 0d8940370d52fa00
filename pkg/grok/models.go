package grok

// completionRequest is the xAI chat completions request payload.
type completionRequest struct {
	Model            string           `json:"model"`
	Messages         []message        `json:"messages"`
	SearchParameters *searchParameters `json:"search_parameters,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// searchParameters enables Live Search for a completion.
type searchParameters struct {
	Mode    string         `json:"mode"`
	Sources []searchSource `json:"sources,omitempty"`
}

type searchSource struct {
	Type string `json:"type"`
}

// completionResponse is the subset of the completions response we read.
type completionResponse struct {
	Choices []choice  `json:"choices"`
	Error   *apiError `json:"error,omitempty"`
}

type choice struct {
	Message message `json:"message"`
}

// apiError is the error object the API returns on non-2xx responses.
type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}
