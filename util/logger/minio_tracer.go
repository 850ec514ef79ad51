package logger

import (
	"github.com/op/go-logging"
)

// MinioTracer lets us write Minio's HTTP trace output to our logs.
// Pass one to minio.Client.TraceOn.
type MinioTracer struct {
	logger *logging.Logger
}

func NewMinioTracer(logger *logging.Logger) *MinioTracer {
	return &MinioTracer{logger: logger}
}

func (t *MinioTracer) Write(p []byte) (n int, err error) {
	t.logger.Debug(string(p))
	return len(p), nil
}
