// Package log holds the process-wide logger of wordjobs.
package log

import (
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
)

// Logger is the shared fallback logger. Handlers should prefer the
// request-scoped logger carried by the gin context.
var Logger logSDK.Logger

func init() {
	var err error
	if Logger, err = logSDK.NewConsoleWithName("wordjobs", logSDK.LevelInfo); err != nil {
		logSDK.Shared.Panic("new logger", zap.Error(err))
	}
}

// SetLevel changes the level of the shared logger, e.g. "debug" or "info".
func SetLevel(level string) error {
	return Logger.ChangeLevel(logSDK.Level(level))
}
