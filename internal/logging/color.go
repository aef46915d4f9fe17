package logging

import (
	"fmt"

	"github.com/fatih/color"
)

// ColorFormatter renders console lines as "[15:04:05] [✓] message" in a colour per level.
// Colour is dropped automatically when stdout is not a terminal or NO_COLOR is set.
type ColorFormatter struct{}

var levelStyles = map[LogLevel]struct {
	symbol string
	color  *color.Color
}{
	LogLevelDebug:   {"·", color.New(color.FgHiBlack)},
	LogLevelInfo:    {"ℹ", color.New(color.FgBlue)},
	LogLevelSuccess: {"✓", color.New(color.FgGreen)},
	LogLevelCustom:  {"*", color.New(color.FgMagenta)},
	LogLevelWarn:    {"!", color.New(color.FgYellow)},
	LogLevelError:   {"✗", color.New(color.FgRed)},
	LogLevelFatal:   {"✗", color.New(color.FgRed, color.Bold)},
}

func (f *ColorFormatter) Format(entry *LogEntry) string {
	style, ok := levelStyles[entry.Level]
	if !ok {
		style = levelStyles[LogLevelInfo]
	}

	line := fmt.Sprintf("[%s] [%s] %s", entry.Timestamp.Format("15:04:05"), style.symbol, entry.Message)
	if entry.Error != nil {
		line += fmt.Sprintf(": %v", entry.Error)
	}
	line += formatContext(entry.Context)

	return style.color.Sprint(line) + "\n"
}
