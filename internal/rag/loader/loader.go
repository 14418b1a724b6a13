package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/akolanti/intelliagent/internal/config"
	"github.com/akolanti/intelliagent/internal/domain/commonModels"
	"github.com/akolanti/intelliagent/internal/domain/pipelineError"
	"github.com/akolanti/intelliagent/internal/metrics"
	"github.com/akolanti/intelliagent/internal/rag/ocr"
	"github.com/akolanti/intelliagent/pkg/logger_i"
)

// Loader turns an uploaded file into text. PDFs whose text layer is too thin to be a
// digital document are sent through OCR.
type Loader struct {
	recognizer     ocr.Recognizer
	minDigitalText int
	pageTimeout    time.Duration
	logger         *logger_i.Logger

	readPDF      func(ctx context.Context, path string) ([]rawPage, error)
	readDocument func(path string) (string, error)
}

func New(recognizer ocr.Recognizer, minDigitalText int) *Loader {
	l := &Loader{
		recognizer:     recognizer,
		minDigitalText: minDigitalText,
		pageTimeout:    config.PageExtractTimeout,
		logger:         logger_i.NewLogger("loader"),
		readDocument:   extractDocument,
	}
	l.readPDF = l.extractPDF
	return l
}

func DocTypeOf(docPath string) commonModels.DocType {
	switch strings.ToLower(filepath.Ext(docPath)) {
	case ".pdf":
		return commonModels.PDF
	case ".docx", ".odt", ".rtf":
		return commonModels.DOCX
	case ".txt", ".md":
		return commonModels.TXT
	default:
		return commonModels.ERR
	}
}

func (l *Loader) Load(ctx context.Context, path string) (commonModels.ExtractedText, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_load", time.Since(start)) }()

	switch docType := DocTypeOf(path); docType {
	case commonModels.PDF:
		return l.loadPDF(ctx, path)
	case commonModels.DOCX, commonModels.TXT:
		text, err := l.readDocument(path)
		if err != nil {
			return commonModels.ExtractedText{}, pipelineError.New(pipelineError.KindExtraction, "load", err)
		}
		return finish(commonModels.ExtractedText{
			Text:        text,
			PageOffsets: []int{0},
			Pages:       1,
			Method:      commonModels.MethodText,
			ContentType: docType,
		})
	default:
		return commonModels.ExtractedText{}, pipelineError.New(pipelineError.KindInvalidInput, "load",
			fmt.Errorf("%w: %q", pipelineError.ErrUnsupportedDocument, filepath.Ext(path)))
	}
}

func (l *Loader) loadPDF(ctx context.Context, path string) (commonModels.ExtractedText, error) {
	log := l.logger.WithContext(ctx).With("path", path)

	result := commonModels.ExtractedText{Method: commonModels.MethodDirect, ContentType: commonModels.PDF}
	pages, err := l.readPDF(ctx, path)
	if err != nil {
		log.Warn("direct extraction failed, trying OCR", "error", err)
	}

	var b strings.Builder
	for i, p := range pages {
		if i > 0 {
			b.WriteString("\n")
		}
		result.PageOffsets = append(result.PageOffsets, b.Len())
		b.WriteString(p.Content)
	}
	result.Text = b.String()
	result.Pages = len(pages)

	if n := nonSpaceLength(result.Text); err != nil || n < l.minDigitalText {
		log.Info("text layer too thin, treating document as scanned", "characters", n, "threshold", l.minDigitalText)
		metrics.IncrementOCRFallback()
		result = fromOCR(l.recognizer.Recognize(ctx, path))
	}
	return finish(result)
}

// fromOCR lays recognized pages out one after another, each followed by a blank line,
// and keeps where every page starts.
func fromOCR(pages []string) commonModels.ExtractedText {
	result := commonModels.ExtractedText{
		Method:      commonModels.MethodOCR,
		ContentType: commonModels.PDF,
		Pages:       len(pages),
	}
	var b strings.Builder
	for _, p := range pages {
		result.PageOffsets = append(result.PageOffsets, b.Len())
		b.WriteString(p)
		b.WriteString("\n\n")
	}
	result.Text = b.String()
	return result
}

func finish(result commonModels.ExtractedText) (commonModels.ExtractedText, error) {
	if strings.TrimSpace(result.Text) == "" {
		return result, pipelineError.New(pipelineError.KindExtraction, "load", pipelineError.ErrEmptyDocument)
	}
	return result, nil
}

func nonSpaceLength(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
