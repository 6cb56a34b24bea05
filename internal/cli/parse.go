package cli

import (
	"strconv"
	"strings"

	"taskManager/internal/models/task"
	"taskManager/internal/service"
)

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(arg), "#"))
	if err != nil || id <= 0 {
		return 0, service.NewValidationError("id", "ожидается положительное целое число, получено "+strconv.Quote(arg))
	}
	return id, nil
}

// parseDue принимает ГГГГ-ММ-ДД, а также today и tomorrow
func parseDue(s string) (*task.Date, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today":
		d := task.Today()
		return &d, nil
	case "tomorrow":
		d := task.Today().AddDays(1)
		return &d, nil
	}

	d, err := task.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return nil, service.NewValidationError("due", err.Error())
	}
	return &d, nil
}

func parseCategory(s string) (task.Category, error) {
	c, err := task.ParseCategory(s)
	if err != nil {
		return "", service.NewValidationError("category", err.Error())
	}
	return c, nil
}

func parsePriority(s string) (task.Priority, error) {
	p, err := task.ParsePriority(s)
	if err != nil {
		return "", service.NewValidationError("priority", err.Error())
	}
	return p, nil
}

func parseStatus(s string) (task.Status, error) {
	st, err := task.ParseStatus(s)
	if err != nil {
		return "", service.NewValidationError("status", err.Error())
	}
	return st, nil
}
