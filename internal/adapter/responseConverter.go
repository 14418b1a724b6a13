package adapter

import (
	"errors"
	"net/http"

	"github.com/akolanti/intelliagent/internal/api"
	"github.com/akolanti/intelliagent/internal/domain/commonModels"
	"github.com/akolanti/intelliagent/internal/domain/pipelineError"
)

const snippetLength = 200

// messages shown to clients per error kind, the cause only goes to the log
var kindMessages = map[pipelineError.Kind]string{
	pipelineError.KindExtraction:    "Failed to extract any meaningful text from the document.",
	pipelineError.KindConfiguration: "The service is misconfigured.",
	pipelineError.KindEmbedding:     "The embedding service is unavailable.",
	pipelineError.KindVectorStore:   "The vector database is unavailable.",
	pipelineError.KindLLM:           "The language model is unavailable.",
	pipelineError.KindBusy:          "Another document operation is in progress, try again shortly.",
}

const internalMessage = "An internal error occurred while processing the request."

func ToDocumentResponse(doc commonModels.Document) *api.DocumentResponse {
	return &api.DocumentResponse{
		Id:          doc.Id,
		Name:        doc.Name,
		ContentType: string(doc.ContentType),
		Method:      string(doc.Method),
		Pages:       doc.Pages,
		Characters:  doc.Characters,
		Chunks:      doc.Chunks,
		IngestedAt:  doc.LastIngestTimestamp,
	}
}

func ToQueryResponse(answer commonModels.Answer) api.QueryResponse {
	res := api.QueryResponse{
		Success: true,
		Answer:  answer.Text,
		Cached:  answer.FromCache,
	}
	if answer.Verdict != nil {
		res.Verification = &api.Verification{
			IsSupported: answer.Verdict.IsSupported,
			Reasoning:   answer.Verdict.Reasoning,
		}
	}
	for _, s := range answer.Sources {
		res.Sources = append(res.Sources, api.Source{
			DocumentName: s.Doc.Name,
			Page:         s.PageNum,
			Score:        s.Score,
			Snippet:      snippet(s.Chunk),
		})
	}
	return res
}

// ToErrorResponse maps a pipeline error to a status code and a body that does not leak
// the cause. Invalid input is the caller's fault and is echoed back.
func ToErrorResponse(err error) (int, api.ErrorResponse) {
	kind := pipelineError.KindOf(err)
	if kind == pipelineError.KindInvalidInput {
		var pe *pipelineError.Error
		message := "Invalid request."
		if errors.As(err, &pe) && pe.Err != nil {
			message = pe.Err.Error()
		}
		return http.StatusBadRequest, BadRequest(message, http.StatusBadRequest)
	}

	message, ok := kindMessages[kind]
	if !ok {
		message = internalMessage
	}
	return http.StatusInternalServerError, api.ErrorResponse{
		Success: false,
		Detail:  message,
		Error: &api.OutgoingError{
			Code:    http.StatusInternalServerError,
			Message: message,
			Retry:   pipelineError.IsRetryable(err),
		},
	}
}

func BadRequest(message string, code int) api.ErrorResponse {
	return api.ErrorResponse{
		Success: false,
		Detail:  message,
		Error: &api.OutgoingError{
			Code:    code,
			Message: message,
			Retry:   code == http.StatusTooManyRequests,
		},
	}
}

func snippet(s string) string {
	r := []rune(s)
	if len(r) <= snippetLength {
		return s
	}
	return string(r[:snippetLength]) + "..."
}
