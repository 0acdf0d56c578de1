package keylogger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func record(m *Monitor) (*[]string, func()) {
	events := make([]string, 0)
	unsubscribe := m.Subscribe(func(ev string) {
		events = append(events, ev)
	})
	return &events, unsubscribe
}

func TestMonitor_ControlV(t *testing.T) {
	m := New()
	events, _ := record(m)

	m.Press(KeyControl)
	m.Press("v")

	assert.Equal(t, []string{"Ctrl + v pressed!"}, *events)
}

func TestMonitor_HoldDoesNotRepeat(t *testing.T) {
	m := New()
	events, _ := record(m)

	m.Press(KeyControl)
	m.Press("v")
	m.Press("v")
	m.Press("Shift")
	m.Release("Shift")

	assert.Len(t, *events, 1)
}

func TestMonitor_ReleaseAndPressAgain(t *testing.T) {
	m := New()
	events, _ := record(m)

	m.Press(KeyControl)
	m.Press("v")
	m.Release("v")
	m.Press("v")

	assert.Equal(t, []string{"Ctrl + v pressed!", "Ctrl + v pressed!"}, *events)
}

func TestMonitor_VAlone(t *testing.T) {
	m := New()
	events, _ := record(m)

	m.Press("v")
	m.Release("v")
	m.Press(KeyControl)

	assert.Empty(t, *events)
	assert.Equal(t, []string{KeyControl}, m.Held())
}

func TestMonitor_MetaAndUppercase(t *testing.T) {
	m := New()
	events, _ := record(m)

	m.Press(KeyMeta)
	m.Press("V")

	assert.Equal(t, []string{"Command + v pressed!"}, *events)
	assert.Equal(t, []string{KeyMeta, "v"}, m.Held())
}

func TestMonitor_Unsubscribe(t *testing.T) {
	m := New()
	events, unsubscribe := record(m)

	unsubscribe()
	unsubscribe()

	m.Press(KeyControl)
	m.Press("v")
	assert.Empty(t, *events)
}

func TestMonitor_Reset(t *testing.T) {
	m := New()
	events, _ := record(m)

	m.Press(KeyControl)
	m.Press("v")
	m.Reset()
	assert.Empty(t, m.Held())

	m.Press(KeyControl)
	m.Press("v")
	assert.Len(t, *events, 2)
}

func TestMonitor_CustomCombination(t *testing.T) {
	m := New(Combination{Keys: []string{KeyControl, "C"}, Event: "copy"})
	events, _ := record(m)

	m.Press("c")
	m.Press(KeyControl)

	assert.Equal(t, []string{"copy"}, *events)
}
