package templates

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meannnn/MindM/internal/design"
	"github.com/meannnn/MindM/internal/docx"
)

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(nil, t.TempDir(), "")
	require.NoError(t, err)
	return r
}

func TestGetDefaultAndUnknown(t *testing.T) {
	r := newRegistry(t)

	v, err := r.Get("")
	require.NoError(t, err)
	assert.Equal(t, "standard", v.ID)

	_, err = r.Get("fancy")
	assert.True(t, errors.Is(err, ErrUnknownTemplate))

	_, err = NewRegistry(nil, t.TempDir(), "fancy")
	assert.Error(t, err)
}

func TestEnsureAllWritesMissing(t *testing.T) {
	r := newRegistry(t)
	for _, info := range r.List() {
		assert.False(t, info.Available)
	}

	written, err := r.EnsureAll(false)
	require.NoError(t, err)
	assert.Len(t, written, 3)

	written, err = r.EnsureAll(false)
	require.NoError(t, err)
	assert.Empty(t, written)

	for _, info := range r.List() {
		assert.True(t, info.Available, info.ID)
	}
}

func TestEveryVariantRendersExample(t *testing.T) {
	r := newRegistry(t)
	rec, err := design.Decode(design.Example())
	require.NoError(t, err)
	data, err := design.TemplateData(rec)
	require.NoError(t, err)

	for _, info := range r.List() {
		t.Run(info.ID, func(t *testing.T) {
			tmpl, err := r.Load(info.ID)
			require.NoError(t, err)

			out, err := tmpl.Render(data, filepath.Join(t.TempDir(), info.ID+".docx"))
			require.NoError(t, err)
			text, err := docx.ExtractFile(out.Path)
			require.NoError(t, err)

			pos := strings.Index(text, "学习活动")
			require.GreaterOrEqual(t, pos, 0)
			for _, a := range rec.LearningActivities {
				i := strings.Index(text[pos:], a.Name)
				require.GreaterOrEqual(t, i, 0, a.Name)
				pos += i + len(a.Name)
				assert.Contains(t, text, a.ActivityIntent)
			}
			assert.NotContains(t, text, "{{")
			assert.NotContains(t, text, "{%")
		})
	}
}

func TestTextIsPlainTemplate(t *testing.T) {
	r := newRegistry(t)
	text, err := r.Text("table")
	require.NoError(t, err)
	assert.Contains(t, text, "六、学习活动设计")
	assert.Contains(t, text, "{{ activity.name }}")
}

func TestReviewBuiltinsClean(t *testing.T) {
	r := newRegistry(t)
	for _, info := range r.List() {
		rev, err := r.Review(info.ID)
		require.NoError(t, err)
		assert.Empty(t, rev.Warnings, info.ID)
	}
}

func TestReviewFlagsGlobalIntent(t *testing.T) {
	r := newRegistry(t)
	v, err := r.Get("standard")
	require.NoError(t, err)

	// A hand-made template that lists activities but keeps one shared intent.
	b := docx.NewBuilder().
		Paragraph("{%p for a in learning_activities %}").
		Paragraph("{{ a.name }}").
		Paragraph("{%p endfor %}").
		Paragraph("活动意图说明：{{ activity_intent }}")
	require.NoError(t, b.WriteFile(filepath.Join(r.Dir(), v.File)))

	rev, err := r.Review("standard")
	require.NoError(t, err)
	require.Len(t, rev.Warnings, 1)
	assert.Contains(t, rev.Warnings[0], "a.activity_intent")
}
