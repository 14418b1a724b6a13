package api

import "time"

type OutgoingError struct {
	Code    int    `json:"code" example:"500"`
	Message string `json:"message" example:"An internal error occurred while processing the request."`
	Retry   bool   `json:"can_retry" example:"true"`
}

type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Detail  string         `json:"detail" example:"An internal error occurred while processing the request."`
	Error   *OutgoingError `json:"error,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message" example:"Hello from the IntelliAgent Backend!"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

type SuccessResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Knowledge base cleared."`
}

type DocumentResponse struct {
	Id          string    `json:"id" example:"5b1c3f0e-8d2a-4d8e-9f57-0f3b4a9f1f8e"`
	Name        string    `json:"name" example:"invoice.pdf"`
	ContentType string    `json:"content_type" example:"PDF"`
	Method      string    `json:"extraction_method" example:"direct"`
	Pages       int       `json:"pages" example:"2"`
	Characters  int       `json:"characters" example:"5120"`
	Chunks      int       `json:"chunks" example:"7"`
	IngestedAt  time.Time `json:"ingested_at"`
}

type UploadResponse struct {
	Success  bool              `json:"success" example:"true"`
	Message  string            `json:"message" example:"Successfully processed and indexed invoice.pdf."`
	Document *DocumentResponse `json:"document,omitempty"`
}

type Verification struct {
	IsSupported bool   `json:"is_supported" example:"true"`
	Reasoning   string `json:"reasoning" example:"The total appears verbatim in the context."`
}

type Source struct {
	DocumentName string  `json:"document_name" example:"invoice.pdf"`
	Page         int     `json:"page" example:"1"`
	Score        float32 `json:"score" example:"0.82"`
	Snippet      string  `json:"snippet" example:"Total amount due: 1234.56 EUR"`
}

type QueryResponse struct {
	Success      bool          `json:"success" example:"true"`
	Answer       string        `json:"answer" example:"The total amount due is 1234.56 EUR."`
	Verification *Verification `json:"verification,omitempty"`
	Sources      []Source      `json:"sources,omitempty"`
	Cached       bool          `json:"cached,omitempty"`
}

// requests---------------------

type QueryRequest struct {
	Question string `json:"question" validate:"required" example:"What is the total amount due?"`
}
