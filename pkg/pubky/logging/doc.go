// Package logging is the logging facade shared by the pubky SDK wrapper and
// the C bridge.
//
// The Logger interface is a context-aware subset of log/slog:
//
//	type Logger interface {
//	    Debug(ctx context.Context, msg string, args ...any)
//	    Info(ctx context.Context, msg string, args ...any)
//	    Warn(ctx context.Context, msg string, args ...any)
//	    Error(ctx context.Context, msg string, args ...any)
//	    With(args ...any) Logger
//	}
//
// New wraps an existing *slog.Logger. Build constructs one from the textual
// level and format used by the bridge environment:
//
//	logger := logging.Build(os.Stderr, "debug", "json")
//	logger.Info(ctx, "signed in", "pubky", pk.String())
//
// # Redaction
//
// Secret keys, passphrases, session cookies and signup tokens never reach a
// log record. Use Redacted in their place:
//
//	logger.Debug(ctx, "signup", "homeserver", hs, logging.Redacted("signup_token"))
//	// signup_token="[redacted]"
package logging
