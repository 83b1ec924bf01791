package logger

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
	slogzerolog "github.com/samber/slog-zerolog/v2"
)

// Logger is the logging facade used across the application.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	WithComponent(name string) Logger
}

type Opts struct {
	Env       string
	SentryDSN string
}

type Impl struct {
	sl *slog.Logger
}

var _ Logger = (*Impl)(nil)

// New builds a slog logger backed by zerolog, with an additional Sentry
// sink for error-level records when a DSN is configured.
func New(opts Opts) *Impl {
	var zl zerolog.Logger
	if opts.Env == "production" {
		zl = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		zl = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	}

	level := slog.LevelDebug
	if opts.Env == "production" {
		level = slog.LevelInfo
	}

	handlers := []slog.Handler{
		slogzerolog.Option{Level: level, Logger: &zl}.NewZerologHandler(),
	}

	if opts.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         opts.SentryDSN,
			Environment: opts.Env,
		})
		if err != nil {
			zl.Warn().Err(err).Msg("Failed to initialize sentry, continuing without it")
		} else {
			handlers = append(handlers, slogsentry.Option{Level: slog.LevelError}.NewSentryHandler())
		}
	}

	return &Impl{sl: slog.New(slogmulti.Fanout(handlers...))}
}

func (l *Impl) Debug(msg string, args ...any) { l.sl.Debug(msg, args...) }
func (l *Impl) Info(msg string, args ...any)  { l.sl.Info(msg, args...) }
func (l *Impl) Warn(msg string, args ...any)  { l.sl.Warn(msg, args...) }
func (l *Impl) Error(msg string, args ...any) { l.sl.Error(msg, args...) }

func (l *Impl) WithComponent(name string) Logger {
	return &Impl{sl: l.sl.With("component", name)}
}

// Printf implements fx.Printer so the instance can be passed to fx.Logger.
func (l *Impl) Printf(format string, args ...interface{}) {
	l.sl.Debug(fmt.Sprintf(format, args...))
}
