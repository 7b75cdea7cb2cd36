package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const MainPart = "word/document.xml"

// ExtractFile reads path and extracts its text.
func ExtractFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", &ExtractionError{Reason: "read file", Err: err}
	}
	return Extract(b)
}

// Extract returns the document's paragraph text in document order, one paragraph
// per line. Table cell paragraphs are flattened into the same stream.
func Extract(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Reason: "open package", Err: err}
	}
	body, err := readZipFile(zr.File, MainPart)
	if err != nil {
		return "", &ExtractionError{Reason: "missing " + MainPart, Err: err}
	}
	paras, err := paragraphs(body)
	if err != nil {
		return "", &ExtractionError{Reason: "malformed document xml", Err: err}
	}
	return strings.TrimSpace(strings.Join(paras, "\n")), nil
}

var errPartNotFound = errors.New("part not found")

func readZipFile(files []*zip.File, target string) ([]byte, error) {
	for _, f := range files {
		if f == nil {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(f.Name), target) {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("%w: %s", errPartNotFound, target)
}

// paragraphs walks w:t, w:tab and w:br nodes and returns the non-empty
// paragraph texts. Malformed XML is an error, not a partial result.
func paragraphs(body []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	var (
		depth  int
		inText bool
		text   strings.Builder
		out    []string
	)

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				if depth == 0 {
					text.Reset()
				}
				depth++
			case "t":
				inText = depth > 0
			case "tab":
				if depth > 0 {
					text.WriteByte('\t')
				}
			case "br", "cr":
				if depth > 0 {
					text.WriteByte('\n')
				}
			}
		case xml.CharData:
			if inText {
				text.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if depth == 0 {
					continue
				}
				depth--
				if depth == 0 {
					if s := strings.TrimSpace(text.String()); s != "" {
						out = append(out, s)
					}
					text.Reset()
				}
			}
		}
	}
	return out, nil
}
