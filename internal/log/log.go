// Package log is iconkit's debug logger. Lines carry a timestamp, level,
// category and key=value fields, and every line is also published on a
// broker so the CLI can follow the log while a command runs. Nothing is
// written until Init or InitWithWriter is called (--debug / ICONKIT_DEBUG).
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zjrosen/iconkit/internal/pubsub"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel maps a config string to a Level. Unknown values map to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Category groups related log messages.
type Category string

const (
	CatRegistry Category = "registry" // reference resolution, aliases, registration
	CatLoader   Category = "loader"   // static, directory and custom loaders
	CatCache    Category = "cache"    // LRU and second-tier cache operations
	CatConfig   Category = "config"   // configuration loading/saving
	CatWatcher  Category = "watcher"  // icon directory watcher events
	CatScan     Category = "scan"     // template scanning and collection
	CatStore    Category = "store"    // SQLite second-tier store
	CatPack     Category = "pack"     // bundled pack activation
	CatRender   Category = "render"   // caller-layer rendering
)

// Categories lists every category, for --debug=<list> validation.
var Categories = []Category{CatRegistry, CatLoader, CatCache, CatConfig, CatWatcher, CatScan, CatStore, CatPack, CatRender}

// Logger writes formatted lines to one writer.
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	closer   io.Closer
	enabled  bool
	minLevel Level
	only     map[Category]bool // nil means every category
	now      func() time.Time
	broker   *pubsub.Broker[string]
}

var current atomic.Pointer[Logger]

func newLogger(w io.Writer, c io.Closer) *Logger {
	return &Logger{
		writer:   w,
		closer:   c,
		enabled:  true,
		minLevel: LevelDebug,
		now:      time.Now,
		broker:   pubsub.NewBroker[string](),
	}
}

// install makes l the process logger and retires the previous one.
func install(l *Logger) {
	if prev := current.Swap(l); prev != nil {
		prev.broker.Close()
	}
}

// Init appends to the file at path. The returned cleanup closes the file
// and detaches the logger.
func Init(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // G304: user-chosen debug log path
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l := newLogger(f, f)
	install(l)
	return func() {
		if current.CompareAndSwap(l, nil) {
			l.broker.Close()
		}
		_ = l.closer.Close()
	}, nil
}

// InitWithWriter points the logger at w (stderr for CLI debugging, a
// buffer in tests), replacing any previous logger.
func InitWithWriter(w io.Writer) {
	install(newLogger(w, nil))
}

func configure(fn func(*Logger)) {
	if l := current.Load(); l != nil {
		l.mu.Lock()
		fn(l)
		l.mu.Unlock()
	}
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	configure(func(l *Logger) { l.enabled = enabled })
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	configure(func(l *Logger) { l.minLevel = level })
}

// SetCategories restricts output to cats. No arguments re-enables every
// category.
func SetCategories(cats ...Category) {
	configure(func(l *Logger) {
		if len(cats) == 0 {
			l.only = nil
			return
		}
		l.only = make(map[Category]bool, len(cats))
		for _, c := range cats {
			l.only[c] = true
		}
	})
}

// ParseCategories parses a comma separated ICONKIT_DEBUG value. "1",
// "true", "all" and "" select every category (nil).
func ParseCategories(s string) ([]Category, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "1", "true", "all":
		return nil, nil
	}
	var cats []Category
	for part := range strings.SplitSeq(s, ",") {
		c := Category(strings.TrimSpace(part))
		if c == "" {
			continue
		}
		if !slices.Contains(Categories, c) {
			return nil, fmt.Errorf("unknown log category %q", c)
		}
		cats = append(cats, c)
	}
	return cats, nil
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	write(LevelDebug, cat, msg, fields)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	write(LevelInfo, cat, msg, fields)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	write(LevelWarn, cat, msg, fields)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	write(LevelError, cat, msg, fields)
}

// ErrorErr logs at error level with err appended as the "error" field.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	var v any = "<nil>"
	if err != nil {
		v = err.Error()
	}
	write(LevelError, cat, msg, append(fields, "error", v))
}

func write(level Level, cat Category, msg string, fields []any) {
	l := current.Load()
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled || level < l.minLevel || (l.only != nil && !l.only[cat]) {
		return
	}

	entry := l.format(level, cat, msg, fields)
	if l.writer != nil {
		_, _ = io.WriteString(l.writer, entry)
	}
	l.broker.Publish(pubsub.LoggedEvent, entry)
}

// format renders one line:
//
//	2026-01-02T15:04:05 [WARN] [loader] Skipping file path="/icons/my icon.svg" size=0
func (l *Logger) format(level Level, cat Category, msg string, fields []any) string {
	var b strings.Builder
	b.WriteString(l.now().Format("2006-01-02T15:04:05"))
	fmt.Fprintf(&b, " [%s] [%s] %s", level, cat, msg)
	for i := 0; i < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		value := "<missing>"
		if i+1 < len(fields) {
			value = formatValue(fields[i+1])
		}
		fmt.Fprintf(&b, " %s=%s", key, value)
	}
	b.WriteByte('\n')
	return b.String()
}

// formatValue quotes values that would otherwise break key=value parsing.
func formatValue(v any) string {
	s := fmt.Sprint(v)
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

// LogEvent is a pubsub event containing a log entry.
type LogEvent = pubsub.Event[string]

// LogListener follows log entries as they are written.
type LogListener = pubsub.ContinuousListener[string]

// NewListener follows the current logger until ctx is cancelled. It returns
// nil when logging is not initialized.
func NewListener(ctx context.Context) *LogListener {
	l := current.Load()
	if l == nil {
		return nil
	}
	return pubsub.NewContinuousListener(ctx, l.broker, pubsub.LoggedEvent)
}
