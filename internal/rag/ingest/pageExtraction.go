package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
	"github.com/pebblebot/pebble/internal/config"
	"github.com/pebblebot/pebble/pkg/logger_i"
)

type rawPage struct {
	Number  int
	Content string
}

func supportedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".pdf":
		return true
	}
	return false
}

func extractText(ctx context.Context, path string, filename string, log *logger_i.Logger) ([]rawPage, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extractPDF(ctx, path, log)
	case ".txt":
		return extractTxt(path, log)
	default:
		return nil, fmt.Errorf("Unsupported file type: %s. Supported types: .txt, .pdf", filename)
	}
}

// extractTxt reads the whole file as a single page-less unit.
func extractTxt(path string, log *logger_i.Logger) ([]rawPage, error) {
	text, err := cat.File(path)
	if err != nil {
		log.Error("Error extracting text file", "error", err)
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return []rawPage{{Number: 0, Content: text}}, nil
}

// extractPDF pulls one unit per page. A page that fails to parse is logged
// and skipped, never fatal to the job. Documents past the page threshold are
// walked in small batches with a yield in between so a long extraction does
// not monopolize the scheduler.
func extractPDF(ctx context.Context, path string, log *logger_i.Logger) ([]rawPage, error) {
	f, err := pdf.Open(path)
	if err != nil {
		log.Error("failed opening pdf file", "error", err)
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	numPages := f.NumPage()
	log.Debug("extractPDF", "pages", numPages)

	batch := numPages
	if numPages > config.LargePageThreshold {
		batch = config.PageBatchSize
	}

	var pages []rawPage
	for start := 1; start <= numPages; start += batch {
		end := start + batch - 1
		if end > numPages {
			end = numPages
		}
		for i := start; i <= end; i++ {
			page := f.Page(i)
			if page.V.IsNull() {
				continue
			}
			content, err := protectExtract(page)
			if err != nil {
				log.Warn("Error parsing page content", "page", i, "error", err)
				continue
			}
			if strings.TrimSpace(content) == "" {
				continue
			}
			pages = append(pages, rawPage{Number: i, Content: content})
		}
		if end < numPages {
			if err := yield(ctx); err != nil {
				return nil, err
			}
		}
	}
	return pages, nil
}

// protectExtract guards against pathological pages that hang the parser.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(10 * time.Second):
		return "", errors.New("page extraction timeout")
	}
}
