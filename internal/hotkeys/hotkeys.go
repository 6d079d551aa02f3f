// Package hotkeys maps keyboard events to workspace actions.
package hotkeys

import (
	"regexp"
	"strconv"
	"strings"
)

// Target describes the element that received the key event
type Target struct {
	TagName           string `json:"tag_name"`
	IsContentEditable bool   `json:"is_content_editable"`
}

// Event is the subset of a keyboard event the resolver reads
type Event struct {
	Key    string  `json:"key"`
	Code   string  `json:"code"`
	Alt    bool    `json:"alt"`
	Ctrl   bool    `json:"ctrl"`
	Meta   bool    `json:"meta"`
	Target *Target `json:"target,omitempty"`
}

// ActionType names the workspace action bound to a key
type ActionType string

const (
	ActionNavigatePrev ActionType = "navigate_prev"
	ActionNavigateNext ActionType = "navigate_next"
	ActionToggleLabel  ActionType = "toggle_label"
)

// Action is a resolved hotkey. LabelIndex is zero based and only set for toggle_label.
type Action struct {
	Type       ActionType `json:"type"`
	LabelIndex int        `json:"label_index"`
}

// Context carries workspace state the resolver depends on
type Context struct {
	ActiveLabelCount int
}

var (
	digitCodePattern = regexp.MustCompile(`^(Digit|Numpad)([1-9])$`)
	digitKeyPattern  = regexp.MustCompile(`^[1-9]$`)
)

// ParseLabelShortcutDigit reads a 1-9 shortcut from the physical key code,
// falling back to the produced character.
func ParseLabelShortcutDigit(e Event) (int, bool) {
	if m := digitCodePattern.FindStringSubmatch(e.Code); m != nil {
		d, _ := strconv.Atoi(m[2])
		return d, true
	}
	if digitKeyPattern.MatchString(e.Key) {
		d, _ := strconv.Atoi(e.Key)
		return d, true
	}
	return 0, false
}

// ShouldIgnoreTarget reports whether the event was typed into a text field
func ShouldIgnoreTarget(t *Target) bool {
	if t == nil {
		return false
	}
	tag := strings.ToLower(t.TagName)
	return tag == "input" || tag == "textarea" || t.IsContentEditable
}

// Resolve maps an event to an action. Text fields and modified keys never
// trigger actions, and digits beyond the active label count are ignored.
func Resolve(e Event, ctx Context) (Action, bool) {
	if ShouldIgnoreTarget(e.Target) {
		return Action{}, false
	}
	if e.Alt || e.Ctrl || e.Meta {
		return Action{}, false
	}

	switch e.Key {
	case "ArrowLeft":
		return Action{Type: ActionNavigatePrev}, true
	case "ArrowRight":
		return Action{Type: ActionNavigateNext}, true
	}

	digit, ok := ParseLabelShortcutDigit(e)
	if !ok || digit > ctx.ActiveLabelCount {
		return Action{}, false
	}
	return Action{Type: ActionToggleLabel, LabelIndex: digit - 1}, true
}
