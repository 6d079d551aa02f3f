package hotkeys

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLabelShortcutDigit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		event Event
		want  int
		ok    bool
	}{
		{"digit code", Event{Code: "Digit3", Key: "#"}, 3, true},
		{"numpad code", Event{Code: "Numpad9"}, 9, true},
		{"code wins over key", Event{Code: "Digit2", Key: "5"}, 2, true},
		{"key fallback", Event{Code: "KeyQ", Key: "4"}, 4, true},
		{"zero ignored", Event{Code: "Digit0", Key: "0"}, 0, false},
		{"letters ignored", Event{Code: "KeyA", Key: "a"}, 0, false},
		{"multi char key", Event{Key: "12"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseLabelShortcutDigit(tt.event)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShouldIgnoreTarget(t *testing.T) {
	t.Parallel()

	assert.True(t, ShouldIgnoreTarget(&Target{TagName: "INPUT"}))
	assert.True(t, ShouldIgnoreTarget(&Target{TagName: "textarea"}))
	assert.True(t, ShouldIgnoreTarget(&Target{TagName: "div", IsContentEditable: true}))
	assert.False(t, ShouldIgnoreTarget(&Target{TagName: "button"}))
	assert.False(t, ShouldIgnoreTarget(nil))
}

func TestResolve(t *testing.T) {
	t.Parallel()

	ctx := Context{ActiveLabelCount: 3}
	tests := []struct {
		name  string
		event Event
		want  Action
		ok    bool
	}{
		{"left arrow", Event{Key: "ArrowLeft"}, Action{Type: ActionNavigatePrev}, true},
		{"right arrow", Event{Key: "ArrowRight"}, Action{Type: ActionNavigateNext}, true},
		{"first label", Event{Code: "Digit1", Key: "1"}, Action{Type: ActionToggleLabel, LabelIndex: 0}, true},
		{"last active label", Event{Code: "Numpad3"}, Action{Type: ActionToggleLabel, LabelIndex: 2}, true},
		{"beyond active labels", Event{Code: "Digit4"}, Action{}, false},
		{"ctrl modified", Event{Key: "ArrowLeft", Ctrl: true}, Action{}, false},
		{"meta modified digit", Event{Code: "Digit1", Meta: true}, Action{}, false},
		{"typing in input", Event{Key: "ArrowRight", Target: &Target{TagName: "input"}}, Action{}, false},
		{"unbound key", Event{Key: "Enter", Code: "Enter"}, Action{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Resolve(tt.event, ctx)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestActionJSONKeepsFirstLabelIndex(t *testing.T) {
	t.Parallel()

	action, ok := Resolve(Event{Key: "1", Code: "Digit1"}, Context{ActiveLabelCount: 3})
	require.True(t, ok)

	data, err := json.Marshal(action)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"toggle_label","label_index":0}`, string(data))
}
