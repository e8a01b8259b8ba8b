package extract

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Format identifies a supported document encoding.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

var errEmptyDocument = errors.New("empty document data")

// ExtractionError reports a document that could not be parsed as its claimed format.
type ExtractionError struct {
	Format Format
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Format, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Label is the human readable format name used in error details.
func (f Format) Label() string {
	return strings.ToUpper(string(f))
}

// FormatForFileName selects a format by case-sensitive file name suffix.
func FormatForFileName(name string) (Format, bool) {
	switch {
	case strings.HasSuffix(name, ".pdf"):
		return FormatPDF, true
	case strings.HasSuffix(name, ".docx"):
		return FormatDOCX, true
	default:
		return "", false
	}
}

// Extract pulls plain text out of data encoded as format.
// Libraries used: github.com/ledongthuc/pdf (PDF) and github.com/nguyenthenguyen/docx (DOCX).
func Extract(ctx context.Context, format Format, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch format {
	case FormatPDF:
		return ExtractPDF(data)
	case FormatDOCX:
		return ExtractDOCX(data)
	default:
		return "", fmt.Errorf("unsupported format: %q", format)
	}
}

// ExtractPDF returns the text of every page in order, one line break between pages.
func ExtractPDF(data []byte) (text string, err error) {
	// The pdf package panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = &ExtractionError{Format: FormatPDF, Err: fmt.Errorf("parser panic: %v", rec)}
		}
	}()

	if len(data) == 0 {
		return "", &ExtractionError{Format: FormatPDF, Err: errEmptyDocument}
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Format: FormatPDF, Err: err}
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", &ExtractionError{Format: FormatPDF, Err: fmt.Errorf("page %d: %w", i, err)}
		}
		pages = append(pages, pageText)
	}
	return strings.Join(pages, "\n"), nil
}

// ExtractDOCX returns the text of every paragraph in order, one line break between paragraphs.
func ExtractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", &ExtractionError{Format: FormatDOCX, Err: errEmptyDocument}
	}
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Format: FormatDOCX, Err: err}
	}
	defer doc.Close()

	paragraphs, err := docxParagraphs(doc.Editable().GetContent())
	if err != nil {
		return "", &ExtractionError{Format: FormatDOCX, Err: err}
	}
	return strings.Join(paragraphs, "\n"), nil
}

// docxParagraphs walks WordprocessingML and collects the run text of each w:p.
func docxParagraphs(raw string) ([]string, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var (
		paragraphs []string
		current    strings.Builder
		depth      int
		inText     bool
	)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				if depth == 0 {
					current.Reset()
				}
				depth++
			case "t":
				inText = true
			case "tab":
				if depth > 0 {
					current.WriteString("\t")
				}
			case "br", "cr":
				if depth > 0 {
					current.WriteString("\n")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				depth--
				if depth == 0 {
					paragraphs = append(paragraphs, current.String())
				}
			}
		case xml.CharData:
			if inText && depth > 0 {
				current.Write(t)
			}
		}
	}
	return paragraphs, nil
}
