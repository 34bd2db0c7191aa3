package document

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

var (
	reInlineSpace = regexp.MustCompile(`[ \t\r\f\v]+`)
	reBlankLines  = regexp.MustCompile(`\n\s*\n+`)
)

// Extract reads the file at path and returns its cleaned plain text.
// Blank output counts as an extraction failure.
func Extract(path string, format Format) (string, error) {
	var (
		text string
		err  error
	)
	switch format {
	case FormatPDF:
		text, err = extractPDF(path)
	case FormatDOCX:
		text, err = extractDOCX(path)
	case FormatText:
		text, err = extractText(path)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrExtractionFailure, format, err)
	}
	text = normalizeWhitespace(text)
	if text == "" {
		return "", fmt.Errorf("%w: %s: no text content", ErrExtractionFailure, format)
	}
	return text, nil
}

func extractPDF(path string) (text string, err error) {
	// the pdf reader panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("corrupt pdf: %v", r)
		}
	}()
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	rs, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rs); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractDOCX(path string) (string, error) {
	d, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", err
	}
	defer d.Close()
	return docxBodyText(d.Editable().GetContent())
}

func extractText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("not valid utf-8")
	}
	return string(data), nil
}

// docxBodyText walks word/document.xml in document order. Paragraphs become
// lines; a table row becomes one line with its cells separated by spaces.
func docxBodyText(content string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(content))
	var (
		out       strings.Builder
		para      strings.Builder
		cell      strings.Builder
		row       []string
		inText    bool
		tableDeep int
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				para.WriteByte('\t')
			case "br", "cr":
				para.WriteByte('\n')
			case "tbl":
				tableDeep++
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if tableDeep > 0 {
					if cell.Len() > 0 {
						cell.WriteByte(' ')
					}
					cell.WriteString(para.String())
				} else {
					out.WriteString(para.String())
					out.WriteByte('\n')
				}
				para.Reset()
			case "tc":
				row = append(row, strings.TrimSpace(cell.String()))
				cell.Reset()
			case "tr":
				out.WriteString(strings.Join(row, " "))
				out.WriteByte('\n')
				row = row[:0]
			case "tbl":
				tableDeep--
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}
	return out.String(), nil
}

func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = reInlineSpace.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	s = strings.Join(lines, "\n")
	s = reBlankLines.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
