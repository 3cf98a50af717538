package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	appCtx "github.com/baechuer/real-time-ressys/services/user-service/internal/pkg/context"
)

const serviceName = "user-service"

var Logger zerolog.Logger

func Init() {
	InitWithWriter(os.Stdout)
}

// InitWithWriter configures Logger from LOG_LEVEL and LOG_FORMAT.
// LOG_FORMAT defaults to console in dev and json everywhere else.
func InitWithWriter(w io.Writer) {
	level, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	format := os.Getenv("LOG_FORMAT")
	if format == "" {
		format = "json"
		if env := os.Getenv("ENV"); env == "" || env == "dev" {
			format = "console"
		}
	}

	out := w
	if format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	Logger = zerolog.New(out).Level(level).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
	zlog.Logger = Logger
}

// WithCtx returns the package logger tagged with the request metadata, if any.
func WithCtx(ctx context.Context) *zerolog.Logger {
	l := Logger
	m, ok := appCtx.RequestMetaFrom(ctx)
	if !ok {
		return &l
	}
	c := l.With()
	if m.ID != "" {
		c = c.Str("request_id", m.ID)
	}
	if m.RemoteIP != "" {
		c = c.Str("remote_ip", m.RemoteIP)
	}
	l = c.Logger()
	return &l
}

// Audit returns a hook for the services' WithAudit option that writes one
// structured line per audited action, tagged with the request metadata.
// Failed actions log at warn. Email fields are masked.
func Audit() func(ctx context.Context, action string, fields map[string]string) {
	return func(ctx context.Context, action string, fields map[string]string) {
		l := WithCtx(ctx)
		ev := l.Info()
		if fields["result"] == "error" {
			ev = l.Warn()
		}
		ev.Bool("audit", true).
			Str("action", action).
			Fields(auditFields(fields)).
			Msg("audit")
	}
}

func auditFields(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if k == "email" {
			v = MaskEmail(v)
		}
		out[k] = v
	}
	return out
}

// MaskEmail keeps the first two characters of the local part and the domain:
// "alice@x.com" becomes "al***@x.com".
func MaskEmail(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at < 0 || len(email) < 5 {
		return "***"
	}
	local := []rune(email[:at])
	keep := 2
	if len(local) < 3 {
		keep = 1
	}
	if len(local) < keep {
		return "***" + email[at:]
	}
	return string(local[:keep]) + "***" + email[at:]
}
