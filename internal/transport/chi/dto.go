package chi

import "github.com/kailas-cloud/circulars/internal/domain"

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeNotFound         ErrorCode = "not_found"
	ErrorCodeMethodNotAllowed ErrorCode = "method_not_allowed"
	ErrorCodeEmbeddingError   ErrorCode = "embedding_provider_error"
	ErrorCodeGenerationError  ErrorCode = "generation_provider_error"
	ErrorCodeTimeout          ErrorCode = "upstream_timeout"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// AskRequest is the body of POST /v1/ask.
type AskRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Question  string `json:"question"`
}

// AskResponse is the body returned by POST /v1/ask.
type AskResponse struct {
	SessionID string           `json:"session_id"`
	Answer    string           `json:"answer"`
	Rendered  string           `json:"rendered"`
	Citations []CitationItem   `json:"citations"`
	Sources   []RetrievedChunk `json:"sources"`
}

// CitationItem is one cited chunk sentence.
type CitationItem struct {
	Sentence string `json:"sentence"`
	DocID    string `json:"doc_id"`
	ChunkID  string `json:"chunk_id"`
}

// RetrieveRequest is the body of POST /v1/retrieve.
type RetrieveRequest struct {
	Question string `json:"question"`
	TopK     *int   `json:"top_k,omitempty"`
}

// RetrieveResponse is the body returned by POST /v1/retrieve.
type RetrieveResponse struct {
	Results []RetrievedChunk `json:"results"`
}

// RetrievedChunk is a chunk with its distance from the query.
type RetrievedChunk struct {
	DocID    string  `json:"doc_id"`
	ChunkID  string  `json:"chunk_id"`
	Position int     `json:"position"`
	Text     string  `json:"text,omitempty"`
	Distance float32 `json:"distance"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Chunks int               `json:"chunks"`
}

func answerToResponse(sessionID string, a domain.Answer) AskResponse {
	citations := make([]CitationItem, len(a.Citations))
	for i, c := range a.Citations {
		citations[i] = CitationItem{Sentence: c.Sentence, DocID: c.DocID, ChunkID: c.ChunkID}
	}
	sources := make([]RetrievedChunk, len(a.Sources))
	for i, r := range a.Sources {
		// ids only; texts are available via /v1/retrieve
		sources[i] = RetrievedChunk{DocID: r.DocID, ChunkID: r.ChunkID, Position: r.Position, Distance: r.Distance}
	}
	return AskResponse{
		SessionID: sessionID,
		Answer:    a.Text,
		Rendered:  a.Render(),
		Citations: citations,
		Sources:   sources,
	}
}

func resultsToResponse(results []domain.RetrievalResult) RetrieveResponse {
	items := make([]RetrievedChunk, len(results))
	for i, r := range results {
		items[i] = RetrievedChunk{
			DocID:    r.DocID,
			ChunkID:  r.ChunkID,
			Position: r.Position,
			Text:     r.Text,
			Distance: r.Distance,
		}
	}
	return RetrieveResponse{Results: items}
}
