package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/akolanti/intelliagent/internal/adapter"
	"github.com/akolanti/intelliagent/internal/api"
	"github.com/akolanti/intelliagent/internal/config"
	"github.com/akolanti/intelliagent/internal/domain/commonModels"
	"github.com/akolanti/intelliagent/internal/rag"
	"github.com/akolanti/intelliagent/internal/rag/loader"
	"github.com/akolanti/intelliagent/pkg/logger_i"
)

type Handler struct {
	service   rag.Service
	tempDir   string
	maxUpload int64
	logger    *logger_i.Logger
}

func NewHandler(service rag.Service, settings config.ServerSettings) *Handler {
	return &Handler{
		service:   service,
		tempDir:   settings.TempDir,
		maxUpload: settings.MaxUploadBytes,
		logger:    logger_i.NewLogger("RequestHandler"),
	}
}

// HelloHandler godoc
// @Summary      Greeting
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.MessageResponse
// @Router       / [get]
func (h *Handler) HelloHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.MessageResponse{Message: "Hello from the IntelliAgent Backend!"}, h.logger)
}

// HealthHandler godoc
// @Summary      Liveness probe
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       /health [get]
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.HealthResponse{Status: "ok"}, h.logger)
}

// ProcessInvoiceHandler godoc
// @Summary      Upload and index a document
// @Description  Replaces the knowledge base with the uploaded PDF, DOCX or TXT file. Scanned PDFs go through OCR.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "The document to index"
// @Success      200  {object}  api.UploadResponse
// @Failure      400  {object}  api.ErrorResponse  "Missing file, unsupported type or file too large"
// @Failure      500  {object}  api.ErrorResponse  "Extraction, embedding or storage failure"
// @Router       /api/process-invoice [post]
func (h *Handler) ProcessInvoiceHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context(), h.logger) {
		return
	}
	log := h.logger.WithContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		log.Warn("bad upload", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "File too large or bad request")
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			log.Warn("could not remove multipart spill files", "error", err)
		}
	}()

	fileReader, fileMetadata, err := r.FormFile("file")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Field 'file' is required")
		return
	}
	defer fileReader.Close()

	name := filepath.Base(fileMetadata.Filename)
	if loader.DocTypeOf(name) == commonModels.ERR {
		WriteErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("Unsupported file type %q", filepath.Ext(name)))
		return
	}

	tempPath, err := saveUpload(h.tempDir, name, fileReader)
	if err != nil {
		log.Error("could not store upload", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}
	defer removeUpload(tempPath, log)

	doc, err := h.service.IndexDocument(r.Context(), tempPath, name)
	if err != nil {
		writePipelineError(w, err, log)
		return
	}

	writeJsonResponse(w, http.StatusOK, api.UploadResponse{
		Success:  true,
		Message:  fmt.Sprintf("Successfully processed and indexed %s.", name),
		Document: adapter.ToDocumentResponse(doc),
	}, h.logger)
}

// QueryHandler godoc
// @Summary      Ask a question about the indexed document
// @Tags         Query
// @Accept       json
// @Produce      json
// @Param        request  body      api.QueryRequest  true  "The question"
// @Success      200      {object}  api.QueryResponse
// @Failure      400      {object}  api.ErrorResponse  "Missing or blank question"
// @Failure      500      {object}  api.ErrorResponse
// @Router       /api/query [post]
func (h *Handler) QueryHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context(), h.logger) {
		return
	}
	log := h.logger.WithContext(r.Context())

	var requestData api.QueryRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Error("Couldn't close the query handler reader", "error", err)
		}
	}(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		log.Warn("Bad query request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "Body must be JSON with a 'question' field")
		return
	}
	if strings.TrimSpace(requestData.Question) == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "Question must not be empty")
		return
	}

	answer, err := h.service.Answer(r.Context(), requestData.Question)
	if err != nil {
		writePipelineError(w, err, log)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToQueryResponse(answer), h.logger)
}

// ClearHandler godoc
// @Summary      Clear the knowledge base
// @Description  Unlike the cleanup after a failed upload, a vector store failure here is not swallowed: it returns 500 with can_retry true.
// @Tags         Documents
// @Produce      json
// @Success      200  {object}  api.SuccessResponse
// @Failure      500  {object}  api.ErrorResponse  "Vector store failure (retryable) or lock timeout"
// @Router       /api/clear [post]
func (h *Handler) ClearHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context(), h.logger) {
		return
	}
	if err := h.service.Clear(r.Context()); err != nil {
		writePipelineError(w, err, h.logger.WithContext(r.Context()))
		return
	}
	writeJsonResponse(w, http.StatusOK, api.SuccessResponse{Success: true, Message: "Knowledge base cleared."}, h.logger)
}

// DocumentHandler godoc
// @Summary      Currently indexed document
// @Tags         Documents
// @Produce      json
// @Success      200  {object}  api.DocumentResponse
// @Failure      404  {object}  api.ErrorResponse  "Nothing indexed"
// @Router       /api/document [get]
func (h *Handler) DocumentHandler(w http.ResponseWriter, r *http.Request) {
	doc, found := h.service.CurrentDocument(r.Context())
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, "No document indexed")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentResponse(doc), h.logger)
}

func writePipelineError(w http.ResponseWriter, err error, log *logger_i.Logger) {
	code, body := adapter.ToErrorResponse(err)
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		code, body = http.StatusBadRequest, adapter.BadRequest("File too large", http.StatusBadRequest)
	}
	log.Error("request failed", "error", err, "status", code)
	writeJsonResponse(w, code, body, log)
}
