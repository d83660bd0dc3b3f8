package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lu4p/cat"

	"github.com/akishore/ComplyAPI/internal/domain/commonModels"
	"github.com/akishore/ComplyAPI/pkg/logger_i"
)

var (
	// ErrUnsupportedType: extension is not one of the readable document types.
	ErrUnsupportedType = errors.New("unsupported document type")
	// ErrNoTextLayer: a PDF carried no extractable text and OCR is not wired in.
	ErrNoTextLayer = errors.New("no text layer found, OCR not available")
	// ErrEmptyContent: extraction succeeded but produced nothing to check.
	ErrEmptyContent = errors.New("document has no content")
)

var logger *logger_i.Logger

func initLogger() {
	if logger == nil {
		logger = logger_i.NewLogger("Extraction")
	}
}

func DocTypeOf(path string) commonModels.DocType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return commonModels.PDF
	case ".docx", ".odt", ".rtf":
		return commonModels.DOCX
	case ".xlsx":
		return commonModels.XLSX
	case ".txt":
		return commonModels.TXT
	default:
		return commonModels.ERR
	}
}

// Text reads the document at path and returns its full extracted text.
// Every failure mode comes back as an error, nothing panics through here:
// missing file, unsupported extension, corrupt content, missing text layer.
func Text(path string) (string, error) {
	initLogger()

	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("document not readable: %w", err)
	}

	docType := DocTypeOf(path)
	logger.Debug("Extracting document", "path", path, "type", docType)

	var text string
	var err error
	switch docType {
	case commonModels.PDF:
		text, err = extractPDF(path)
	case commonModels.DOCX, commonModels.TXT:
		text, err = extractWithCat(path)
	case commonModels.XLSX:
		text, err = extractXLSX(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(path))
	}

	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyContent
	}
	logger.Debug("Finished extraction", "path", path, "length", len(text))
	return text, nil
}

// File reads a .odt, .docx, .rtf or plaintext file and returns the content
func extractWithCat(path string) (string, error) {
	text, err := cat.File(path)
	if err != nil {
		logger.Error("Error extracting content from doc", "path", path, "error", err)
		return "", fmt.Errorf("failed to extract document: %w", err)
	}
	return text, nil
}
