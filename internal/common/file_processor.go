package common

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"careerpilot/internal/errors"
	"careerpilot/internal/utils"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// FileProcessor handles common file operations
type FileProcessor struct {
	logger *errors.Logger
}

// NewFileProcessor creates a new file processor instance
func NewFileProcessor(logger *errors.Logger) *FileProcessor {
	return &FileProcessor{logger: logger}
}

// ReadFile reads content from a file with proper error handling
func (fp *FileProcessor) ReadFile(filename string) (string, error) {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			// Log the error but don't override the main operation result
			if fp.logger != nil {
				fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
			}
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}

	return string(content), nil
}

// ReadDocument reads a file and converts it to plain text, extracting from
// PDF and DOCX containers when the extension calls for it. The result feeds
// the text normalizer; this is the only place extraction mechanics live.
func (fp *FileProcessor) ReadDocument(filename string) (string, error) {
	switch utils.GetFileExtension(filename) {
	case ".pdf":
		return fp.extractPDFText(filename)
	case ".docx":
		return fp.extractDocxText(filename)
	default:
		return fp.ReadFile(filename)
	}
}

// extractPDFText pulls the plain text stream out of a PDF file
func (fp *FileProcessor) extractPDFText(filename string) (string, error) {
	file, reader, err := pdf.Open(filename)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot open PDF file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil && fp.logger != nil {
			fp.logger.Warn("Failed to close PDF file", "filename", filename, "error", err)
		}
	}()

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot extract text from PDF: %s", filename), err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read PDF text stream: %s", filename), err)
	}

	if fp.logger != nil {
		fp.logger.Debug("Extracted text from PDF",
			"filename", filename,
			"pages", reader.NumPage(),
			"characters", buf.Len())
	}

	return buf.String(), nil
}

// docxTagPattern matches any remaining XML tag after paragraph handling
var docxTagPattern = regexp.MustCompile(`<[^>]+>`)

// extractDocxText pulls the document text out of a DOCX container
func (fp *FileProcessor) extractDocxText(filename string) (string, error) {
	reader, err := docx.ReadDocxFile(filename)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot open DOCX file: %s", filename), err)
	}
	defer func() {
		if err := reader.Close(); err != nil && fp.logger != nil {
			fp.logger.Warn("Failed to close DOCX file", "filename", filename, "error", err)
		}
	}()

	content := reader.Editable().GetContent()

	// Paragraph and line-break closers become newlines, every other tag is
	// dropped, then XML entities are decoded
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	content = strings.ReplaceAll(content, "<w:br/>", "\n")
	content = docxTagPattern.ReplaceAllString(content, "")
	content = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
	).Replace(content)

	if fp.logger != nil {
		fp.logger.Debug("Extracted text from DOCX",
			"filename", filename,
			"characters", len(content))
	}

	return content, nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		err := os.MkdirAll(dir, 0750)
		if err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	err := os.WriteFile(filename, []byte(content), 0600)
	if err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}

	return nil
}

// ValidateAndReadFiles validates and reads multiple input documents
func (fp *FileProcessor) ValidateAndReadFiles(filenames ...string) ([]string, error) {
	contents := make([]string, len(filenames))

	for i, filename := range filenames {
		// Validate input file
		if err := utils.ValidateInputFile(filename); err != nil {
			return nil, errors.NewValidationError("INVALID_INPUT_FILE",
				fmt.Sprintf("Invalid file %s", filename), err)
		}

		// Warn about unrecognized extensions
		if !utils.IsTextFile(filename) && !utils.IsDocumentFile(filename) {
			if fp.logger != nil {
				fp.logger.Warn("File may not be a supported document type",
					"filename", filename)
			} else {
				fmt.Fprintf(os.Stderr, "Warning: %s may not be a supported document type\n", filename)
			}
		}

		// Read and extract document content
		content, err := fp.ReadDocument(filename)
		if err != nil {
			return nil, err // Error already wrapped by ReadDocument
		}

		contents[i] = content
	}

	return contents, nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout is valid
	}

	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}

	return nil
}
