package logger

import (
	"fmt"

	"github.com/fatih/color"
)

// levelAttributes defines consistent colors for log levels.
// Grey: trace
// Cyan: debug
// Blue: info
// Yellow: warn
// Red: error
var levelAttributes = map[string]color.Attribute{
	"TRACE": color.FgHiBlack,
	"DEBUG": color.FgCyan,
	"INFO":  color.FgBlue,
	"WARN":  color.FgYellow,
	"ERROR": color.FgRed,
}

// formatWithColor formats a levelled log line with an ANSI-coloured level.
// Colour is forced on because the logger has already decided its writer
// accepts it; fatih/color only auto-detects os.Stdout.
func (cl *ConsoleLogger) formatWithColor(ts, level, message string) string {
	coloredLevel := level
	if attr, ok := levelAttributes[level]; ok {
		c := color.New(attr)
		c.EnableColor()
		coloredLevel = c.Sprint(level)
	}
	return fmt.Sprintf("[%s] [%s] %s\n", ts, coloredLevel, message)
}
