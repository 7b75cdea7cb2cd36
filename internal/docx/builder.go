package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/><Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/></Types>`

	rootRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

	documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/></Relationships>`

	stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="Times New Roman" w:eastAsia="宋体" w:hAnsi="Times New Roman"/><w:sz w:val="24"/></w:rPr></w:rPrDefault></w:docDefaults><w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style><w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/><w:basedOn w:val="Normal"/><w:pPr><w:jc w:val="center"/></w:pPr><w:rPr><w:b/><w:sz w:val="36"/></w:rPr></w:style><w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/><w:rPr><w:b/><w:sz w:val="32"/></w:rPr></w:style><w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:basedOn w:val="Normal"/><w:rPr><w:b/><w:sz w:val="28"/></w:rPr></w:style><w:style w:type="table" w:styleId="TableGrid"><w:name w:val="Table Grid"/><w:tblPr><w:tblBorders><w:top w:val="single" w:sz="4" w:space="0" w:color="auto"/><w:left w:val="single" w:sz="4" w:space="0" w:color="auto"/><w:bottom w:val="single" w:sz="4" w:space="0" w:color="auto"/><w:right w:val="single" w:sz="4" w:space="0" w:color="auto"/><w:insideH w:val="single" w:sz="4" w:space="0" w:color="auto"/><w:insideV w:val="single" w:sz="4" w:space="0" w:color="auto"/></w:tblBorders></w:tblPr></w:style></w:styles>`

	documentOpen  = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" + `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
	documentClose = `<w:sectPr><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="851" w:footer="992" w:gutter="0"/></w:sectPr></w:body></w:document>`
)

// packageTime is stamped on every entry so identical content yields identical bytes.
var packageTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Builder assembles a minimal WordprocessingML package.
type Builder struct {
	body strings.Builder
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) Title(text string) *Builder {
	return b.styled("Title", text, false)
}

func (b *Builder) Heading(text string, level int) *Builder {
	style := "Heading1"
	if level >= 2 {
		style = "Heading2"
	}
	return b.styled(style, text, false)
}

func (b *Builder) Paragraph(text string) *Builder {
	return b.styled("", text, false)
}

func (b *Builder) Bold(text string) *Builder {
	return b.styled("", text, true)
}

// Field writes "label：value" with the label in bold.
func (b *Builder) Field(label, value string) *Builder {
	b.body.WriteString("<w:p>")
	b.body.WriteString(run(label+"：", true))
	b.body.WriteString(run(value, false))
	b.body.WriteString("</w:p>")
	return b
}

// Table writes rows of cells. A row with a single cell spans the full width.
func (b *Builder) Table(rows [][]string) *Builder {
	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	if cols == 0 {
		return b
	}
	b.body.WriteString(`<w:tbl><w:tblPr><w:tblStyle w:val="TableGrid"/><w:tblW w:w="5000" w:type="pct"/></w:tblPr><w:tblGrid>`)
	for i := 0; i < cols; i++ {
		b.body.WriteString(`<w:gridCol/>`)
	}
	b.body.WriteString(`</w:tblGrid>`)
	for _, r := range rows {
		b.body.WriteString("<w:tr>")
		for _, cell := range r {
			b.body.WriteString("<w:tc><w:tcPr>")
			if len(r) == 1 && cols > 1 {
				b.body.WriteString(`<w:gridSpan w:val="` + strconv.Itoa(cols) + `"/>`)
			}
			b.body.WriteString("</w:tcPr><w:p>")
			b.body.WriteString(run(cell, false))
			b.body.WriteString("</w:p></w:tc>")
		}
		b.body.WriteString("</w:tr>")
	}
	b.body.WriteString("</w:tbl>")
	return b
}

func (b *Builder) styled(style, text string, bold bool) *Builder {
	b.body.WriteString("<w:p>")
	if style != "" {
		b.body.WriteString(`<w:pPr><w:pStyle w:val="` + style + `"/></w:pPr>`)
	}
	b.body.WriteString(run(text, bold))
	b.body.WriteString("</w:p>")
	return b
}

func run(text string, bold bool) string {
	var sb strings.Builder
	sb.WriteString("<w:r>")
	if bold {
		sb.WriteString("<w:rPr><w:b/></w:rPr>")
	}
	sb.WriteString(`<w:t xml:space="preserve">`)
	sb.WriteString(runText(text))
	sb.WriteString("</w:t></w:r>")
	return sb.String()
}

// runText escapes s for use inside w:t, turning newlines into line breaks.
func runText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteString(`</w:t><w:br/><w:t xml:space="preserve">`)
		}
		segs := strings.Split(line, "\t")
		for j, seg := range segs {
			if j > 0 {
				sb.WriteString(`</w:t><w:tab/><w:t xml:space="preserve">`)
			}
			_ = xml.EscapeText(&sb, []byte(seg))
		}
	}
	return sb.String()
}

func (b *Builder) DocumentXML() string {
	return documentOpen + b.body.String() + documentClose
}

func (b *Builder) Bytes() ([]byte, error) {
	return packageBytes(map[string]string{
		"[Content_Types].xml":          contentTypesXML,
		"_rels/.rels":                  rootRelsXML,
		"word/_rels/document.xml.rels": documentRelsXML,
		"word/styles.xml":              stylesXML,
		MainPart:                       b.DocumentXML(),
	})
}

func (b *Builder) WriteFile(path string) error {
	data, err := b.Bytes()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

var packageOrder = []string{
	"[Content_Types].xml",
	"_rels/.rels",
	"word/_rels/document.xml.rels",
	"word/styles.xml",
	MainPart,
}

func packageBytes(parts map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range packageOrder {
		content, ok := parts[name]
		if !ok {
			continue
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: packageTime})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(content)); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
