package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/meannnn/MindM/internal/pipeline"
)

func sampleTasks() []pipeline.Artifact {
	ts := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	return []pipeline.Artifact{
		{TaskID: "t1", FileID: "f1", Filename: "春.docx", Size: 1024, TemplateID: "standard", Stage: pipeline.StageCompleted, Attempts: 1, RequestID: "req-1", CreatedAt: ts, UpdatedAt: ts},
		{TaskID: "t2", FileID: "f2", Filename: "秋.docx", Size: 2048, TemplateID: "table", Stage: pipeline.StageValidationFailed,
			Error: "教学设计数据验证失败", ValidationErrors: []string{"缺少必需字段: summary", "缺少必需字段: teacher_name"}, CreatedAt: ts, UpdatedAt: ts},
	}
}

func TestTasksXLSX(t *testing.T) {
	data, err := TasksXLSX(sampleTasks())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(TasksSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, taskHeaders, rows[0])
	assert.Equal(t, "t1", rows[1][0])
	assert.Equal(t, "completed", rows[1][6])
	assert.Equal(t, "100", rows[1][8])
	assert.Equal(t, "failed", rows[2][6])
	assert.Equal(t, "validation_failed", rows[2][7])
	assert.Equal(t, "缺少必需字段: summary\n缺少必需字段: teacher_name", rows[2][10])
	assert.Equal(t, "2024-09-01T08:00:00Z", rows[2][14])
}

func TestWriteTasksXLSXEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tasks.xlsx")
	require.NoError(t, WriteTasksXLSX(nil, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(TasksSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
