package cli

import (
	"errors"
	"fmt"
	"io"

	"taskManager/internal/logger"
	"taskManager/internal/service"

	"go.uber.org/zap"
)

const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// handleError печатает ошибку для пользователя и возвращает код выхода
func handleError(w io.Writer, err error) int {
	if err == nil {
		return ExitOK
	}

	var businessErr *service.BusinessError
	if errors.As(err, &businessErr) {
		exitCode := mapBusinessErrorToExit(businessErr.Code)

		logger.Warn("CLI: Бизнес-ошибка",
			zap.String("error_code", businessErr.Code),
			zap.Int("exit_code", exitCode))

		fmt.Fprintf(w, "Ошибка: %s\n", businessMessage(businessErr))
		return exitCode
	}

	logger.Error("CLI: Ошибка выполнения команды", err)
	fmt.Fprintf(w, "Ошибка: %s\n", err.Error())
	return ExitFailure
}

func mapBusinessErrorToExit(code string) int {
	switch code {
	case service.CodeValidationError:
		return ExitUsage
	default:
		return ExitFailure
	}
}

func businessMessage(err *service.BusinessError) string {
	switch err.Code {
	case service.CodeNotFound:
		return err.Message
	case service.CodeValidationError:
		return err.Message
	case service.CodeIOFailure:
		return fmt.Sprintf("не удалось сохранить или прочитать задачи (%v)", err.Err)
	case service.CodeCorruptData:
		return fmt.Sprintf("файл задач повреждён и не может быть прочитан (%v)", err.Err)
	default:
		return err.Error()
	}
}
