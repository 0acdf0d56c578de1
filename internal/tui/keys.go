package tui

import (
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/letsssgooo/quizctl/internal/attempt/keylogger"
)

// pasteKeys переводит событие терминала в набор клавиш монитора.
// Терминал не сообщает об отпускании клавиш, поэтому сочетание
// нажимается и сразу отпускается.
func pasteKeys(ev *tcell.EventKey) []string {
	switch {
	case ev.Key() == tcell.KeyCtrlV:
		return []string{keylogger.KeyControl, "v"}
	case ev.Key() == tcell.KeyRune && ev.Modifiers()&(tcell.ModAlt|tcell.ModMeta) != 0:
		return []string{keylogger.KeyMeta, string(unicode.ToLower(ev.Rune()))}
	default:
		return nil
	}
}

// tap нажимает и отпускает клавиши в мониторе.
func tap(m *keylogger.Monitor, keys []string) {
	for _, k := range keys {
		m.Press(k)
	}
	for i := len(keys) - 1; i >= 0; i-- {
		m.Release(keys[i])
	}
}
