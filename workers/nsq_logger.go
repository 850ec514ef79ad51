package workers

import (
	"strings"

	"github.com/op/go-logging"
)

// nsqLogger sends go-nsq's log output to our logger at the matching
// level. go-nsq starts each line with a three-letter level.
type nsqLogger struct {
	logger *logging.Logger
}

func newNsqLogger(logger *logging.Logger) *nsqLogger {
	return &nsqLogger{logger: logger}
}

func (l *nsqLogger) Output(calldepth int, s string) error {
	switch {
	case strings.HasPrefix(s, "ERR"):
		l.logger.Error(s)
	case strings.HasPrefix(s, "WRN"):
		l.logger.Warning(s)
	case strings.HasPrefix(s, "INF"):
		l.logger.Info(s)
	default:
		l.logger.Debug(s)
	}
	return nil
}
