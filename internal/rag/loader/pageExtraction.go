package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

type rawPage struct {
	Number  int
	Content string
}

var errPageTimeout = errors.New("page extraction timed out")

// extractPDF reads the text layer page by page. Pages that fail or time out are skipped
// so one broken page does not hide the rest of the document.
func (l *Loader) extractPDF(ctx context.Context, path string) (pages []rawPage, err error) {
	log := l.logger.WithContext(ctx)
	defer func() {
		// the parser panics on some malformed cross reference tables
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat pdf: %w", err)
	}
	f, err := pdf.NewReader(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	numPages := f.NumPage()
	log.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		page := f.Page(i)
		if page.V.IsNull() {
			log.Debug("extractPDF", "null page", i)
			continue
		}

		content, err := l.protectExtract(page)
		if err != nil {
			log.Warn("Error parsing page content", "page", i, "error", err)
			continue
		}
		pages = append(pages, rawPage{Number: i, Content: content})
	}
	return pages, nil
}

func (l *Loader) protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{err: fmt.Errorf("page parser panic: %v", r)}
			}
		}()
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()

	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(l.pageTimeout):
		return "", errPageTimeout
	}
}

// extractDocument reads .docx, .odt, .rtf and plain text files as a single page.
func extractDocument(path string) (string, error) {
	text, err := cat.File(path)
	if err != nil {
		return "", fmt.Errorf("failed to extract document: %w", err)
	}
	return text, nil
}
