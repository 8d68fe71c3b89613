package observability

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"gabornoise/internal/config"
)

// AnnounceLogger writes one JSON line per announcement. With no file
// configured it falls back to base at info level.
type AnnounceLogger struct {
	logger *zap.Logger
	closer io.Closer
}

// NewAnnounceLogger opens the replay log described by cfg.
func NewAnnounceLogger(cfg config.AnnounceConfig, base *zap.Logger) *AnnounceLogger {
	if cfg.File == "" {
		return &AnnounceLogger{logger: base.Named("announce")}
	}
	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
	}
	return NewAnnounceLoggerTo(zapcore.AddSync(file), file)
}

// NewAnnounceLoggerTo writes announcements to w. closer may be nil.
func NewAnnounceLoggerTo(w zapcore.WriteSyncer, closer io.Closer) *AnnounceLogger {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(ec), w, zap.InfoLevel)
	return &AnnounceLogger{logger: zap.New(core).Named("announce"), closer: closer}
}

// Announce records obj under the "stimulus" key together with the frame
// counter.
func (a *AnnounceLogger) Announce(frame uint64, obj zapcore.ObjectMarshaler) {
	a.logger.Info("announce", zap.Uint64("frame", frame), zap.Object("stimulus", obj))
}

// Close flushes and closes the underlying file, if any.
func (a *AnnounceLogger) Close() error {
	_ = a.logger.Sync()
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
