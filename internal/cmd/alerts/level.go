package alerts

import (
	"fmt"

	"github.com/vyfood/storefront/internal/cmd/emoji"
)

// Level is an alert's severity.
type Level int

// Levels, most severe first.
const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
	LevelSuccess
)

const resetColor = "\033[0m"

var levels = [...]struct {
	name, icon, color string
}{
	LevelError:   {"error", emoji.Error, "\033[31m"},
	LevelWarning: {"warning", emoji.Warning, "\033[33m"},
	LevelInfo:    {"info", emoji.Info, "\033[36m"},
	LevelSuccess: {"success", emoji.Success, "\033[32m"},
}

func (l Level) known() bool { return l >= 0 && int(l) < len(levels) }

func (l Level) String() string {
	if !l.known() {
		return fmt.Sprintf("unknown(%d)", l)
	}
	return levels[l].name
}

// Icon is the level's default symbol.
func (l Level) Icon() string {
	if !l.known() {
		return emoji.Info
	}
	return levels[l].icon
}

// Color is the ANSI escape that starts the level's color.
func (l Level) Color() string {
	if !l.known() {
		return resetColor
	}
	return levels[l].color
}
