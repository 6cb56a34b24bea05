package service

import (
	"errors"
	"fmt"
)

const (
	CodeNotFound        = "NOT_FOUND"
	CodeValidationError = "VALIDATION_ERROR"
	CodeIOFailure       = "IO_FAILURE"
	CodeCorruptData     = "CORRUPT_DATA"
	CodeIDExhausted     = "ID_EXHAUSTED"
)

// эталоны для errors.Is: сравнение идёт по коду
var (
	ErrNotFound    = &BusinessError{Code: CodeNotFound}
	ErrValidation  = &BusinessError{Code: CodeValidationError}
	ErrIOFailure   = &BusinessError{Code: CodeIOFailure}
	ErrCorruptData = &BusinessError{Code: CodeCorruptData}
	ErrIDExhausted = &BusinessError{Code: CodeIDExhausted}
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func (b *BusinessError) Is(target error) bool {
	t, ok := target.(*BusinessError)
	if !ok {
		return false
	}
	return t.Code == b.Code
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

func NewNotFound(id int) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("задача %d не найдена", id),
		Details: map[string]any{
			"id": id,
		},
	}
}

func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidationError,
		Message: fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

func NewIOFailure(op string, err error) *BusinessError {
	return &BusinessError{
		Code:    CodeIOFailure,
		Message: fmt.Sprintf("ошибка хранилища при операции '%s'", op),
		Details: map[string]any{
			"op": op,
		},
		Err: err,
	}
}

func NewCorruptData(err error) *BusinessError {
	return &BusinessError{
		Code:    CodeCorruptData,
		Message: "сохранённые данные повреждены",
		Err:     err,
	}
}

func NewIDExhausted(last int) *BusinessError {
	return &BusinessError{
		Code:    CodeIDExhausted,
		Message: "исчерпан диапазон идентификаторов задач",
		Details: map[string]any{
			"last_id": last,
		},
	}
}

// CodeOf возвращает код BusinessError из цепочки или пустую строку
func CodeOf(err error) string {
	var busErr *BusinessError
	if errors.As(err, &busErr) {
		return busErr.Code
	}
	return ""
}
