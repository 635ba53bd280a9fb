// Package logger configures the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Options selects the log format and the optional error sink.
type Options struct {
	Dev       bool   // text at debug level instead of JSON at info
	SentryDSN string // errors are also sent to Sentry when set
	Release   string
}

// Init builds the logger, installs it as the slog default and returns it
// with a flush function to run before exit.
func Init(w io.Writer, opts Options) (*slog.Logger, func()) {
	var handlers []slog.Handler
	if opts.Dev {
		handlers = append(handlers, slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	} else {
		handlers = append(handlers, slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	flush := func() {}
	if opts.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:     opts.SentryDSN,
			Release: opts.Release,
		})
		if err == nil {
			handlers = append(handlers, slogsentry.Option{Level: slog.LevelError}.NewSentryHandler())
			flush = func() { sentry.Flush(2 * time.Second) }
		} else {
			// Reported once the stdout handler is installed below.
			defer slog.Warn("sentry disabled", "error", err)
		}
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = slogmulti.Fanout(handlers...)
	} else {
		handler = handlers[0]
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log, flush
}
