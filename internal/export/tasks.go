// Package export writes the task registry as a spreadsheet.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/meannnn/MindM/internal/pipeline"
)

const TasksSheet = "Tasks"

var taskHeaders = []string{
	"Task ID",
	"File ID",
	"Filename",
	"Size (bytes)",
	"Template",
	"AI Model",
	"Status",
	"Stage",
	"Progress",
	"Error",
	"Validation Errors",
	"Validation Warnings",
	"Request ID",
	"Attempts",
	"Created At",
	"Updated At",
}

// TasksXLSX returns a workbook with one row per task, in the order given.
func TasksXLSX(tasks []pipeline.Artifact) ([]byte, error) {
	f, err := tasksWorkbook(tasks)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteTasksXLSX saves the workbook to path, creating parent directories.
func WriteTasksXLSX(tasks []pipeline.Artifact, path string) error {
	f, err := tasksWorkbook(tasks)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx save: %w", err)
	}
	return nil
}

func tasksWorkbook(tasks []pipeline.Artifact) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", TasksSheet); err != nil {
		f.Close()
		return nil, err
	}
	idx, err := f.GetSheetIndex(TasksSheet)
	if err != nil {
		f.Close()
		return nil, err
	}
	f.SetActiveSheet(idx)

	for i, h := range taskHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(TasksSheet, cell, h)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(taskHeaders), 1)
		_ = f.SetCellStyle(TasksSheet, "A1", last, style)
	}

	for r, a := range tasks {
		row := r + 2
		values := []any{
			a.TaskID,
			a.FileID,
			a.Filename,
			a.Size,
			a.TemplateID,
			a.AIModel,
			string(a.Status()),
			string(a.Stage),
			a.Progress(),
			a.Error,
			strings.Join(a.ValidationErrors, "\n"),
			strings.Join(a.ValidationWarnings, "\n"),
			a.RequestID,
			a.Attempts,
			formatTime(a.CreatedAt),
			formatTime(a.UpdatedAt),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			_ = f.SetCellValue(TasksSheet, cell, v)
		}
	}

	_ = f.SetColWidth(TasksSheet, "A", "B", 38)
	_ = f.SetColWidth(TasksSheet, "C", "C", 28)
	_ = f.SetColWidth(TasksSheet, "J", "L", 48)
	_ = f.SetColWidth(TasksSheet, "O", "P", 22)
	_ = f.SetPanes(TasksSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	return f, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
