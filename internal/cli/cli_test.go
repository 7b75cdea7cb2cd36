package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meannnn/MindM/internal/design"
	"github.com/meannnn/MindM/internal/docx"
)

type testDirs struct {
	root      string
	config    string
	templates string
}

func newTestDirs(t *testing.T) testDirs {
	t.Helper()
	root := t.TempDir()
	d := testDirs{
		root:      root,
		config:    filepath.Join(root, "mindm.yaml"),
		templates: filepath.Join(root, "templates"),
	}
	yaml := "templates:\n  dir: " + d.templates + "\n  default_id: table\n"
	require.NoError(t, os.WriteFile(d.config, []byte(yaml), 0o644))
	return d
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd("test-1.0")
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func writeRecord(t *testing.T, dir string, rec map[string]any) string {
	t.Helper()
	b, err := json.Marshal(rec)
	require.NoError(t, err)
	p := filepath.Join(dir, "record.json")
	require.NoError(t, os.WriteFile(p, b, 0o644))
	return p
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "mindm version test-1.0")
}

func TestTemplatesInitAndList(t *testing.T) {
	d := newTestDirs(t)

	out, err := run(t, "--config", d.config, "templates", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "missing")

	out, err = run(t, "--config", d.config, "templates", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote")
	assert.FileExists(t, filepath.Join(d.templates, "teaching_design_standard.docx"))

	out, err = run(t, "--config", d.config, "templates", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "already present")

	out, err = run(t, "--config", d.config, "templates", "init", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote")

	out, err = run(t, "--config", d.config, "templates", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "* table")
	assert.NotContains(t, out, "missing")
}

func TestTemplatesInspect(t *testing.T) {
	d := newTestDirs(t)
	_, err := run(t, "--config", d.config, "templates", "init")
	require.NoError(t, err)

	out, err := run(t, "--config", d.config, "templates", "inspect", "standard")
	require.NoError(t, err)
	assert.Contains(t, out, `"lesson_name"`)

	_, err = run(t, "--config", d.config, "templates", "inspect", "nope")
	assert.Error(t, err)
}

func TestValidateCmd(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "validate", writeRecord(t, dir, design.Example()))
	require.NoError(t, err)
	assert.Contains(t, out, "valid (0 warnings)")

	bad := design.Example()
	delete(bad, "summary")
	out, err = run(t, "validate", writeRecord(t, dir, bad))
	require.Error(t, err)
	assert.Contains(t, out, "error: 缺少必需字段: summary")
}

func TestValidateCmdAcceptsFencedOutput(t *testing.T) {
	dir := t.TempDir()
	b, err := json.Marshal(design.Example())
	require.NoError(t, err)
	p := filepath.Join(dir, "raw.txt")
	require.NoError(t, os.WriteFile(p, []byte("模型输出如下：\n```json\n"+string(b)+"\n```"), 0o644))

	_, err = run(t, "validate", p)
	assert.NoError(t, err)
}

func TestExtractCmd(t *testing.T) {
	dir := t.TempDir()
	data, err := docx.NewBuilder().Paragraph("第一段").Paragraph("第二段").Bytes()
	require.NoError(t, err)
	p := filepath.Join(dir, "lesson.docx")
	require.NoError(t, os.WriteFile(p, data, 0o644))

	out, err := run(t, "extract", p)
	require.NoError(t, err)
	assert.Contains(t, out, "第一段\n第二段")

	require.NoError(t, os.WriteFile(p, []byte("not a zip"), 0o644))
	_, err = run(t, "extract", p)
	assert.Error(t, err)
}

func TestRenderCmd(t *testing.T) {
	d := newTestDirs(t)
	rec := writeRecord(t, d.root, design.Example())
	out := filepath.Join(d.root, "out", "design.docx")

	msg, err := run(t, "--config", d.config, "render", rec, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, msg, "template table")
	require.FileExists(t, out)

	text, err := docx.ExtractFile(out)
	require.NoError(t, err)
	assert.Contains(t, text, design.Example()["lesson_name"].(string))
}

func TestRenderCmdRejectsInvalidRecord(t *testing.T) {
	d := newTestDirs(t)
	bad := design.Example()
	delete(bad, "lesson_name")
	rec := writeRecord(t, d.root, bad)
	out := filepath.Join(d.root, "bad.docx")

	msg, err := run(t, "--config", d.config, "render", rec, "-o", out)
	require.Error(t, err)
	assert.Contains(t, msg, "lesson_name")
	assert.NoFileExists(t, out)
}

func TestUnknownConfigPath(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "templates", "list")
	assert.Error(t, err)
}
