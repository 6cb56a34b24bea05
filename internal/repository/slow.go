package repository

import (
	"time"

	"taskManager/internal/logger"

	"go.uber.org/zap"
)

// SlowThreshold - операции хранилища дольше этого порога пишутся в warn
const SlowThreshold = 100 * time.Millisecond

// ObserveDuration логирует медленную операцию; вызывать через defer
func ObserveDuration(store, op string, started time.Time) {
	elapsed := time.Since(started)
	if elapsed < SlowThreshold {
		return
	}
	logger.Warn("Repository: Медленная операция",
		zap.String("store", store),
		zap.String("op", op),
		zap.Duration("elapsed", elapsed),
	)
}
