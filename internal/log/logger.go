package log

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// ANSI color codes.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// leadingFields are printed first, in this order, by PrettyFormatter.
var leadingFields = []string{"cycle", "class", "action", "email", "bundle_id", "outcome", "status_code"}

// PrettyFormatter formats log entries in a human-readable way for terminal output.
type PrettyFormatter struct {
	// NoColor disables ANSI escapes, e.g. when output is not a terminal.
	NoColor bool
}

// Format renders a logrus entry as a single line.
func (f *PrettyFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	timestamp := entry.Time.Format("15:04:05")

	var levelIcon string
	var levelColor string
	switch entry.Level {
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		levelIcon = "✗"
		levelColor = colorRed
	case logrus.WarnLevel:
		levelIcon = "⚠"
		levelColor = colorYellow
	case logrus.InfoLevel:
		levelIcon = "•"
		levelColor = colorGreen
	case logrus.DebugLevel, logrus.TraceLevel:
		levelIcon = "·"
		levelColor = colorGray
	}

	var fieldParts []string
	for _, k := range orderedKeys(entry.Data) {
		fieldParts = append(fieldParts, fmt.Sprintf("%s=%v", f.paint(colorCyan, k), entry.Data[k]))
	}

	var fieldsStr string
	if len(fieldParts) > 0 {
		fieldsStr = " " + strings.Join(fieldParts, " ")
	}

	line := fmt.Sprintf("%s %s %s%s\n",
		f.paint(colorGray, timestamp),
		f.paint(levelColor, levelIcon),
		entry.Message,
		fieldsStr,
	)
	return []byte(line), nil
}

func (f *PrettyFormatter) paint(color, s string) string {
	if f.NoColor {
		return s
	}
	return color + s + colorReset
}

// orderedKeys returns the leading fields first, then the rest sorted.
func orderedKeys(data logrus.Fields) []string {
	keys := make([]string, 0, len(data))
	seen := make(map[string]struct{}, len(leadingFields))
	for _, k := range leadingFields {
		if _, ok := data[k]; ok {
			keys = append(keys, k)
			seen[k] = struct{}{}
		}
	}
	rest := make([]string, 0, len(data))
	for k := range data {
		if _, ok := seen[k]; !ok {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// Install configures the standard logrus logger used across the service.
func Install(level string, format string) {
	Configure(logrus.StandardLogger(), os.Stdout, level, format)
}

// Configure sets output, format, and level on an existing logger.
func Configure(logger *logrus.Logger, out io.Writer, level string, format string) {
	if out != nil {
		logger.SetOutput(out)
	}
	setFormatter(logger, format)
	setLevel(logger, level)
}

func setFormatter(logger *logrus.Logger, format string) {
	switch format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "pretty":
		logger.SetFormatter(&PrettyFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05",
		})
	}
}

func setLevel(logger *logrus.Logger, level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
}
