package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"text/template"
	"time"
)

// Templates use the docxtpl dialect:
//
//	{{ field }}                          scalar placeholder
//	{%tr for a in list %} ... {%tr endfor %}  repeat a table row
//	{%p for a in list %} ... {%p endfor %}    repeat paragraphs
//	{% if field %} ... {% else %} ... {% endif %}
//
// Inside a loop, {{ a.field }} reads the current element and {{ loop.index }}
// is its 1-based position.

var (
	paragraphRe = regexp.MustCompile(`(?s)<w:p[ >].*?</w:p>`)
	rowRe       = regexp.MustCompile(`(?s)<w:tr[ >].*?</w:tr>`)
	textRe      = regexp.MustCompile(`(?s)<w:t(?: [^>]*)?>(.*?)</w:t>`)
	rowTagRe    = regexp.MustCompile(`\{%tr\s+(.*?)\s*%\}`)
	paraTagRe   = regexp.MustCompile(`\{%p\s+(.*?)\s*%\}`)
	tokenRe     = regexp.MustCompile(`\{\{(.*?)\}\}|\{%-?(.*?)-?%\}`)
	exprRe      = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*$`)
	forRe       = regexp.MustCompile(`^for\s+([A-Za-z_][A-Za-z0-9_]*)\s+in\s+(\S+)$`)
)

// Loop is one repeated block found in a template.
type Loop struct {
	Var        string `json:"var"`
	Collection string `json:"collection"`
	Kind       string `json:"kind"`
}

// Inspection lists what a template expects from the render data.
type Inspection struct {
	Fields     []string            `json:"fields"`
	LoopFields map[string][]string `json:"loop_fields"`
	Loops      []Loop              `json:"loops"`
}

// HasField reports whether name is used as a top-level placeholder.
func (in *Inspection) HasField(name string) bool {
	for _, f := range in.Fields {
		if f == name {
			return true
		}
	}
	return false
}

// Template is a compiled docx template. It is safe for concurrent Execute calls.
type Template struct {
	name  string
	files []*zip.File
	parts map[string]*template.Template
	info  *Inspection
}

type RenderedDocument struct {
	Path        string
	Size        int64
	GeneratedAt time.Time
}

func LoadTemplate(path string) (*Template, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &RenderError{Stage: StageLoad, Path: path, Err: err}
	}
	return ParseTemplate(path, b)
}

func ParseTemplate(name string, data []byte) (*Template, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &RenderError{Stage: StageLoad, Path: name, Err: err}
	}
	t := &Template{
		name:  name,
		files: zr.File,
		parts: map[string]*template.Template{},
		info:  &Inspection{LoopFields: map[string][]string{}},
	}
	found := false
	for _, f := range zr.File {
		if !isTemplatedPart(f.Name) {
			continue
		}
		raw, err := readZipFile(zr.File, f.Name)
		if err != nil {
			return nil, &RenderError{Stage: StageLoad, Path: name, Err: err}
		}
		src, err := translate(prepare(string(raw)), t.info)
		if err != nil {
			return nil, &RenderError{Stage: StageLoad, Path: name, Err: fmt.Errorf("%s: %w", f.Name, err)}
		}
		tmpl, err := template.New(f.Name).Funcs(funcs).Option("missingkey=error").Parse(src)
		if err != nil {
			return nil, &RenderError{Stage: StageLoad, Path: name, Err: fmt.Errorf("%s: %w", f.Name, err)}
		}
		t.parts[f.Name] = tmpl
		if f.Name == MainPart {
			found = true
		}
	}
	if !found {
		return nil, &RenderError{Stage: StageLoad, Path: name, Err: fmt.Errorf("%w: %s", errPartNotFound, MainPart)}
	}
	return t, nil
}

func isTemplatedPart(name string) bool {
	if name == MainPart {
		return true
	}
	if !strings.HasPrefix(name, "word/") || !strings.HasSuffix(name, ".xml") {
		return false
	}
	base := strings.TrimPrefix(name, "word/")
	return !strings.Contains(base, "/") && (strings.HasPrefix(base, "header") || strings.HasPrefix(base, "footer"))
}

func (t *Template) Inspect() *Inspection { return t.info }

// Execute renders the template into a new package.
func (t *Template) Execute(data map[string]any) ([]byte, error) {
	rendered := make(map[string][]byte, len(t.parts))
	for name, tmpl := range t.parts {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, &RenderError{Stage: StageExecute, Path: t.name, Err: err}
		}
		rendered[name] = buf.Bytes()
	}

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	for _, f := range t.files {
		content, ok := rendered[f.Name]
		if !ok {
			if err := zw.Copy(f); err != nil {
				return nil, &RenderError{Stage: StageWrite, Path: t.name, Err: err}
			}
			continue
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: zip.Deflate, Modified: f.Modified})
		if err != nil {
			return nil, &RenderError{Stage: StageWrite, Path: t.name, Err: err}
		}
		if _, err := w.Write(content); err != nil {
			return nil, &RenderError{Stage: StageWrite, Path: t.name, Err: err}
		}
	}
	if err := zw.Close(); err != nil {
		return nil, &RenderError{Stage: StageWrite, Path: t.name, Err: err}
	}
	return out.Bytes(), nil
}

// Render executes t and writes the result to outPath, creating parent
// directories. The file is replaced atomically, so readers holding the
// previous document keep seeing it whole.
func (t *Template) Render(data map[string]any, outPath string) (*RenderedDocument, error) {
	b, err := t.Execute(data)
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(outPath, b); err != nil {
		return nil, &RenderError{Stage: StageWrite, Path: outPath, Err: err}
	}
	return &RenderedDocument{Path: outPath, Size: int64(len(b)), GeneratedAt: time.Now().UTC()}, nil
}

func writeFileAtomic(path string, b []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(b); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Render loads templatePath and renders data into outPath.
func Render(data map[string]any, templatePath, outPath string) (*RenderedDocument, error) {
	t, err := LoadTemplate(templatePath)
	if err != nil {
		return nil, err
	}
	return t.Render(data, outPath)
}

// prepare merges the runs of every tagged paragraph into its first w:t so tags
// split by Word across runs become contiguous, then lifts {%tr %} and {%p %}
// tags out of the rows and paragraphs that hold them.
func prepare(xmlText string) string {
	xmlText = paragraphRe.ReplaceAllStringFunc(xmlText, mergeRuns)
	xmlText = rowRe.ReplaceAllStringFunc(xmlText, func(row string) string {
		if m := rowTagRe.FindStringSubmatch(row); m != nil {
			return "{% " + m[1] + " %}"
		}
		return row
	})
	return paragraphRe.ReplaceAllStringFunc(xmlText, func(p string) string {
		if m := paraTagRe.FindStringSubmatch(p); m != nil {
			return "{% " + m[1] + " %}"
		}
		return p
	})
}

func mergeRuns(p string) string {
	matches := textRe.FindAllStringSubmatchIndex(p, -1)
	if len(matches) < 2 {
		return p
	}
	var all strings.Builder
	for _, m := range matches {
		all.WriteString(p[m[2]:m[3]])
	}
	joined := all.String()
	if !strings.Contains(joined, "{{") && !strings.Contains(joined, "{%") {
		return p
	}
	var out strings.Builder
	prev := 0
	for i, m := range matches {
		out.WriteString(p[prev:m[0]])
		if i == 0 {
			out.WriteString(`<w:t xml:space="preserve">`)
			out.WriteString(joined)
			out.WriteString(`</w:t>`)
		} else {
			out.WriteString(`<w:t></w:t>`)
		}
		prev = m[1]
	}
	out.WriteString(p[prev:])
	return out.String()
}

type scope struct {
	kind     string // "for" or "if"
	loopVar  string
	indexVar string
	sawElse  bool
}

// translate rewrites docxtpl tags into text/template actions and records the
// placeholders it saw in info.
func translate(src string, info *Inspection) (string, error) {
	var (
		out   strings.Builder
		stack []*scope
		prev  int
		seen  = map[string]bool{}
	)

	lookupLoop := func(name string) *scope {
		for i := len(stack) - 1; i >= 0; i-- {
			if stack[i].kind == "for" && stack[i].loopVar == name {
				return stack[i]
			}
		}
		return nil
	}
	innermostLoop := func() *scope {
		for i := len(stack) - 1; i >= 0; i-- {
			if stack[i].kind == "for" {
				return stack[i]
			}
		}
		return nil
	}
	expr := func(raw string) (string, error) {
		e := strings.TrimSpace(raw)
		if !exprRe.MatchString(e) {
			return "", fmt.Errorf("unsupported expression %q", e)
		}
		head, rest, _ := strings.Cut(e, ".")
		if head == "loop" && (rest == "index" || rest == "index0") {
			l := innermostLoop()
			if l == nil {
				return "", errors.New("loop.index used outside a loop")
			}
			if rest == "index0" {
				return l.indexVar, nil
			}
			return "(inc " + l.indexVar + ")", nil
		}
		if l := lookupLoop(head); l != nil {
			key := l.loopVar + "." + rest
			if rest != "" && !seen[key] {
				seen[key] = true
				info.LoopFields[l.loopVar] = append(info.LoopFields[l.loopVar], rest)
			}
			return "$" + e, nil
		}
		if !seen[head] {
			seen[head] = true
			info.Fields = append(info.Fields, head)
		}
		return "$." + e, nil
	}

	for _, m := range tokenRe.FindAllStringSubmatchIndex(src, -1) {
		out.WriteString(src[prev:m[0]])
		prev = m[1]

		if m[2] >= 0 {
			e, err := expr(src[m[2]:m[3]])
			if err != nil {
				return "", err
			}
			out.WriteString("{{docx " + e + "}}")
			continue
		}

		tag := strings.Join(strings.Fields(src[m[4]:m[5]]), " ")
		switch {
		case strings.HasPrefix(tag, "for "):
			fm := forRe.FindStringSubmatch(tag)
			if fm == nil {
				return "", fmt.Errorf("malformed for tag %q", tag)
			}
			coll, err := expr(fm[2])
			if err != nil {
				return "", err
			}
			s := &scope{kind: "for", loopVar: fm[1], indexVar: fmt.Sprintf("$i%d", len(stack))}
			info.Loops = append(info.Loops, Loop{Var: fm[1], Collection: fm[2], Kind: loopKind(src, m[0])})
			stack = append(stack, s)
			fmt.Fprintf(&out, "{{range %s, $%s := %s}}", s.indexVar, s.loopVar, coll)
		case tag == "endfor":
			if len(stack) == 0 || stack[len(stack)-1].kind != "for" {
				return "", errors.New("endfor without matching for")
			}
			stack = stack[:len(stack)-1]
			out.WriteString("{{end}}")
		case strings.HasPrefix(tag, "if "):
			e, err := expr(strings.TrimPrefix(tag, "if "))
			if err != nil {
				return "", err
			}
			stack = append(stack, &scope{kind: "if"})
			out.WriteString("{{if truthy " + e + "}}")
		case tag == "else":
			if len(stack) == 0 || stack[len(stack)-1].kind != "if" || stack[len(stack)-1].sawElse {
				return "", errors.New("else without matching if")
			}
			stack[len(stack)-1].sawElse = true
			out.WriteString("{{else}}")
		case tag == "endif":
			if len(stack) == 0 || stack[len(stack)-1].kind != "if" {
				return "", errors.New("endif without matching if")
			}
			stack = stack[:len(stack)-1]
			out.WriteString("{{end}}")
		default:
			return "", fmt.Errorf("unsupported tag {%% %s %%}", tag)
		}
	}
	if len(stack) > 0 {
		return "", fmt.Errorf("unclosed %s block", stack[len(stack)-1].kind)
	}
	out.WriteString(src[prev:])
	return out.String(), nil
}

// loopKind guesses whether a loop repeats table rows from what follows the tag.
func loopKind(src string, at int) string {
	rest := src[at:]
	if i := strings.Index(rest, "<w:tr"); i >= 0 {
		if j := strings.Index(rest, "<w:p"); j < 0 || i < j {
			return "row"
		}
	}
	return "paragraph"
}

var funcs = template.FuncMap{
	"docx":   docxValue,
	"truthy": truthy,
	"inc":    func(i int) int { return i + 1 },
}

func docxValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return runText(x)
	case fmt.Stringer:
		return runText(x.String())
	default:
		return runText(fmt.Sprint(x))
	}
}

func truthy(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int64, reflect.Int32:
		return rv.Int() != 0
	case reflect.Float64, reflect.Float32:
		return rv.Float() != 0
	}
	return true
}
