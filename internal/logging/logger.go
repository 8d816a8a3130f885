package logging

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorWhite  = "\033[97m"
)

// Log levels
const (
	LevelCrit   = iota // 0 - Critical errors (fatal, app should stop)
	LevelError         // 1 - Errors (non-fatal but important)
	LevelWarn          // 2 - Warnings
	LevelNotice        // 3 - Important info (startup, shutdown, config)
	LevelInfo          // 4 - General info
	LevelDebug         // 5 - Debug details
)

// severityField carries our own level through logrus, which has no NOTICE or CRIT.
const severityField = "severity"

type severity struct {
	abbrev string
	color  string
	level  logrus.Level
}

var severities = [...]severity{
	LevelCrit:   {"CRT", colorRed, logrus.ErrorLevel},
	LevelError:  {"ERR", colorRed, logrus.ErrorLevel},
	LevelWarn:   {"WRN", colorYellow, logrus.WarnLevel},
	LevelNotice: {"NOT", colorCyan, logrus.InfoLevel},
	LevelInfo:   {"INF", colorWhite, logrus.InfoLevel},
	LevelDebug:  {"DBG", colorGray, logrus.DebugLevel},
}

var levelNames = map[string]int{
	"crit":     LevelCrit,
	"critical": LevelCrit,
	"error":    LevelError,
	"warn":     LevelWarn,
	"warning":  LevelWarn,
	"notice":   LevelNotice,
	"info":     LevelInfo,
	"debug":    LevelDebug,
}

var (
	// Logger is the logrus logger every message is written through.
	Logger = newLogger()
	// Level controls verbosity. Default to NOTICE for sane production defaults.
	Level      = LevelNotice
	UseColors  = true
	TimeFormat = "Jan 02 15:04:05.000"
)

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&Formatter{})
	// Filtering happens against Level before logrus sees the entry.
	l.SetLevel(logrus.DebugLevel)
	return l
}

// SetLevel sets the logger verbosity level.
func SetLevel(l int) {
	Level = l
}

// ParseLevel converts a level name (crit, error, warn, notice, info, debug)
// or its number (0-5) into a level.
func ParseLevel(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if l, ok := levelNames[s]; ok {
		return l, nil
	}
	if n, err := strconv.Atoi(s); err == nil && n >= LevelCrit && n <= LevelDebug {
		return n, nil
	}
	return LevelNotice, fmt.Errorf("invalid log level %q", s)
}

// SetOutput sets the output destination for logs
func SetOutput(w io.Writer) {
	Logger.SetOutput(w)
}

// DisableColors disables color output
func DisableColors() {
	UseColors = false
}

// Formatter renders entries as "Oct 14 13:16:37.788 INF message".
type Formatter struct{}

func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	sev, ok := entry.Data[severityField].(severity)
	if !ok {
		sev = severityFor(entry.Level)
	}
	timestamp := entry.Time.Format(TimeFormat)
	msg := sanitizeLogMessage(entry.Message)

	if UseColors {
		return []byte(fmt.Sprintf("%s %s%s%s %s\n", timestamp, sev.color, sev.abbrev, colorReset, msg)), nil
	}
	return []byte(fmt.Sprintf("%s %s %s\n", timestamp, sev.abbrev, msg)), nil
}

// severityFor maps entries logged directly through Logger.
func severityFor(l logrus.Level) severity {
	switch l {
	case logrus.PanicLevel, logrus.FatalLevel:
		return severities[LevelCrit]
	case logrus.ErrorLevel:
		return severities[LevelError]
	case logrus.WarnLevel:
		return severities[LevelWarn]
	case logrus.InfoLevel:
		return severities[LevelInfo]
	}
	return severities[LevelDebug]
}

// sanitizeLogMessage escapes newlines, carriage returns and tabs so that
// user-controlled input such as callsigns cannot forge log entries.
func sanitizeLogMessage(msg string) string {
	return strings.NewReplacer(
		"\n", "\\n",
		"\r", "\\r",
		"\t", "\\t",
	).Replace(msg)
}

func logf(level int, format string, v ...interface{}) {
	if Level < level {
		return
	}
	sev := severities[level]
	Logger.WithField(severityField, sev).Log(sev.level, fmt.Sprintf(format, v...))
}

// Crit logs critical errors (application should stop)
func Crit(format string, v ...interface{}) {
	logf(LevelCrit, format, v...)
}

// Error logs error-level messages (non-fatal but important)
func Error(format string, v ...interface{}) {
	logf(LevelError, format, v...)
}

// Warn logs warning-level messages
func Warn(format string, v ...interface{}) {
	logf(LevelWarn, format, v...)
}

// Notice logs important informational messages (startup, config, shutdown)
func Notice(format string, v ...interface{}) {
	logf(LevelNotice, format, v...)
}

// Info logs general informational messages
func Info(format string, v ...interface{}) {
	logf(LevelInfo, format, v...)
}

// Debug logs very verbose diagnostic messages
func Debug(format string, v ...interface{}) {
	logf(LevelDebug, format, v...)
}
