package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/akolanti/intelliagent/internal/config"
	"github.com/akolanti/intelliagent/internal/metrics"
	"github.com/akolanti/intelliagent/pkg/logger_i"
)

// Recognizer turns a scanned pdf into text, one entry per page in page order. It never
// fails: an unreadable document yields no pages and the caller decides what that means.
type Recognizer interface {
	Recognize(ctx context.Context, pdfPath string) []string
}

// CommandRunner runs an external program and returns its stdout.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

type Tesseract struct {
	pdftoppm    string
	tesseract   string
	language    string
	dpi         int
	pageTimeout time.Duration
	run         CommandRunner
	logger      *logger_i.Logger
}

func NewTesseract(settings config.OCRSettings) *Tesseract {
	return &Tesseract{
		pdftoppm:    settings.PdftoppmPath,
		tesseract:   settings.TesseractPath,
		language:    settings.Language,
		dpi:         settings.DPI,
		pageTimeout: settings.PageTimeout,
		run:         execRunner,
		logger:      logger_i.NewLogger("ocr"),
	}
}

// WithRunner swaps the process runner, used by tests.
func (t *Tesseract) WithRunner(run CommandRunner) *Tesseract {
	t.run = run
	return t
}

func (t *Tesseract) Recognize(ctx context.Context, pdfPath string) []string {
	log := t.logger.WithContext(ctx).With("path", pdfPath)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("ocr", time.Since(start)) }()

	tmp, err := os.MkdirTemp("", "ocr-*")
	if err != nil {
		log.Error("could not create ocr workspace", "error", err)
		return nil
	}
	defer os.RemoveAll(tmp)

	prefix := filepath.Join(tmp, "page")
	if _, err := t.run(ctx, t.pdftoppm, "-r", strconv.Itoa(t.dpi), "-png", pdfPath, prefix); err != nil {
		log.Error("rasterizing pdf failed", "error", err)
		return nil
	}

	images, err := pageImages(tmp)
	if err != nil || len(images) == 0 {
		log.Error("no page images produced", "error", err)
		return nil
	}
	log.Debug("running recognition", "pages", len(images))

	pages := make([]string, 0, len(images))
	for _, img := range images {
		pageText, err := t.recognizePage(ctx, img)
		if err != nil {
			log.Error("recognition failed", "image", filepath.Base(img), "error", err)
			return nil
		}
		// tesseract ends every page with a form feed
		pages = append(pages, strings.TrimRight(pageText, "\f"))
	}
	return pages
}

func (t *Tesseract) recognizePage(ctx context.Context, img string) (string, error) {
	if t.pageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.pageTimeout)
		defer cancel()
	}
	out, err := t.run(ctx, t.tesseract, img, "stdout", "-l", t.language)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// pageImages lists page-N.png files ordered by N. pdftoppm zero-pads N to the width of
// the page count, so the number is parsed instead of trusting lexical order.
func pageImages(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "page-*.png"))
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool {
		return pageNumber(files[i]) < pageNumber(files[j])
	})
	return files, nil
}

func pageNumber(path string) int {
	name := strings.TrimSuffix(filepath.Base(path), ".png")
	n, err := strconv.Atoi(strings.TrimPrefix(name, "page-"))
	if err != nil {
		return 0
	}
	return n
}
