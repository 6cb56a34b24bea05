package repository

import "errors"

var (
	// ErrNotFound - хранилище ещё ни разу не сохранялось
	ErrNotFound = errors.New("хранилище задач не найдено")
	// ErrCorruptData - содержимое есть, но его нельзя разобрать
	ErrCorruptData = errors.New("повреждённые данные хранилища")
)
