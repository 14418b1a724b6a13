package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/akolanti/intelliagent/internal/adapter"
	"github.com/akolanti/intelliagent/pkg/logger_i"
)

var logRH = logger_i.NewLogger("RequestHandler")

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}, log *logger_i.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// the status line is already out
		log.Error("Error encoding response", "error", err)
	}
}

func validateContext(ctx context.Context, log *logger_i.Logger) bool {
	if ctx.Err() != nil {
		log.WithContext(ctx).Warn("context error", "error", ctx.Err())
		return false
	}
	return true
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, message string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(message, httpCode), logRH)
}

// saveUpload copies the upload to a private temp file that keeps the original
// extension, the loader picks the extractor from it.
func saveUpload(dir, name string, src io.Reader) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	dst, err := os.CreateTemp(dir, "upload-*"+filepath.Ext(name))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("write error: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}

func removeUpload(path string, log *logger_i.Logger) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Error("Error removing file", "path", path, "error", err)
	}
}
