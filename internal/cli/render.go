package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"taskManager/internal/models/task"
	"taskManager/internal/service"

	"github.com/olekukonko/tablewriter"
)

const (
	OutputTable = "table"
	OutputJSON  = "json"

	timeLayout = "2006-01-02 15:04"
)

type renderer struct {
	w      io.Writer
	format string
}

func (r renderer) json(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("кодирование JSON: %w", err)
	}
	_, err = fmt.Fprintln(r.w, string(data))
	return err
}

func (r renderer) task(t *task.Task) error {
	if r.format == OutputJSON {
		return r.json(t)
	}

	table := tablewriter.NewWriter(r.w)
	table.Header("Field", "Value")

	_ = table.Append([]string{"ID", strconv.Itoa(t.ID)})
	_ = table.Append([]string{"Title", t.Title})
	if t.Description != "" {
		_ = table.Append([]string{"Description", t.Description})
	}
	_ = table.Append([]string{"Category", t.Category.Label()})
	_ = table.Append([]string{"Priority", t.Priority.Label()})
	_ = table.Append([]string{"Status", t.Status.Label()})
	_ = table.Append([]string{"Due", dueText(t.DueDate)})
	_ = table.Append([]string{"Created", t.CreatedAt.Local().Format(timeLayout)})
	if t.CompletedAt != nil {
		_ = table.Append([]string{"Completed", t.CompletedAt.Local().Format(timeLayout)})
	}

	return table.Render()
}

func (r renderer) taskList(tasks []task.Task, overdue map[int]bool) error {
	if r.format == OutputJSON {
		return r.json(map[string]any{
			"tasks": tasks,
			"count": len(tasks),
		})
	}

	if len(tasks) == 0 {
		_, err := fmt.Fprintln(r.w, "Задач нет.")
		return err
	}

	table := tablewriter.NewWriter(r.w)
	table.Header("ID", "Title", "Category", "Priority", "Status", "Due")

	for _, t := range tasks {
		due := dueText(t.DueDate)
		if overdue[t.ID] {
			due += " (!)"
		}
		_ = table.Append([]string{
			strconv.Itoa(t.ID),
			t.Title,
			t.Category.Label(),
			t.Priority.Label(),
			t.Status.Label(),
			due,
		})
	}

	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(r.w, "\nВсего: %d\n", len(tasks))
	return err
}

func (r renderer) statistics(stats service.Statistics) error {
	if r.format == OutputJSON {
		return r.json(stats)
	}

	summary := tablewriter.NewWriter(r.w)
	summary.Header("Metric", "Value")
	_ = summary.Append([]string{"Total", strconv.Itoa(stats.Total)})
	_ = summary.Append([]string{task.StatusCompleted.Label(), strconv.Itoa(stats.Completed)})
	_ = summary.Append([]string{task.StatusInProgress.Label(), strconv.Itoa(stats.InProgress)})
	_ = summary.Append([]string{task.StatusPending.Label(), strconv.Itoa(stats.Pending)})
	_ = summary.Append([]string{"Overdue", strconv.Itoa(stats.Overdue)})
	_ = summary.Append([]string{"Completion", fmt.Sprintf("%.0f%%", stats.CompletionRate())})
	if err := summary.Render(); err != nil {
		return err
	}

	breakdown := tablewriter.NewWriter(r.w)
	breakdown.Header("Group", "Value", "Tasks")
	for _, c := range stats.ByCategory {
		_ = breakdown.Append([]string{"Category", c.Category.Label(), strconv.Itoa(c.Count)})
	}
	for _, p := range stats.ByPriority {
		_ = breakdown.Append([]string{"Priority", p.Priority.Label(), strconv.Itoa(p.Count)})
	}
	return breakdown.Render()
}

func (r renderer) message(format string, args ...any) {
	if r.format == OutputJSON {
		return
	}
	fmt.Fprintf(r.w, format+"\n", args...)
}

func dueText(d *task.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}
