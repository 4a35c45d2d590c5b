package documents

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// ErrUnsupportedFileType is returned before any I/O when a path's extension
// has no registered parser.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// Document is the plain-text content extracted from one uploaded file.
type Document struct {
	Source string // original file path
	Text   string
}

// Loader turns an uploaded file into a plain-text document.
type Loader interface {
	Load(path string) (*Document, error)
}

// FileLoader dispatches by file extension to the matching parser.
// Only .pdf and .docx are supported.
type FileLoader struct{}

func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// IsSupported reports whether a filename has a parseable extension.
func IsSupported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".pdf" || ext == ".docx"
}

func (l *FileLoader) Load(path string) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var text string
	var err error
	switch ext {
	case ".pdf":
		text, err = loadPDF(path)
	case ".docx":
		text, err = loadDOCX(path)
	default:
		return nil, fmt.Errorf("%w: %s (only PDF and DOCX are supported)", ErrUnsupportedFileType, ext)
	}
	if err != nil {
		return nil, err
	}

	return &Document{Source: path, Text: text}, nil
}

// loadPDF extracts text page by page via MuPDF.
func loadPDF(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var pages []string
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err == nil && strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}

	return strings.Join(pages, "\n\n"), nil
}

// loadDOCX walks the OOXML container and collects the text runs of
// word/document.xml. Paragraph ends become newlines.
func loadDOCX(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX: %w", err)
	}
	defer archive.Close()

	var body io.ReadCloser
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			body, err = f.Open()
			if err != nil {
				return "", fmt.Errorf("failed to read DOCX body: %w", err)
			}
			break
		}
	}
	if body == nil {
		return "", errors.New("invalid DOCX: missing word/document.xml")
	}
	defer body.Close()

	var sb strings.Builder
	decoder := xml.NewDecoder(body)
	inTextRun := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse DOCX body: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inTextRun = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inTextRun = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inTextRun {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}
