// Package keylogger отслеживает зажатые клавиши и сообщает о запрещенных
// сочетаниях во время попытки.
package keylogger

import (
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
)

// Имена клавиш-модификаторов
const (
	KeyControl = "Control"
	KeyMeta    = "Meta"
)

// Combination - сочетание клавиш и событие, которое о нем сообщает.
type Combination struct {
	Keys  []string
	Event string
}

// DefaultCombinations - сочетания вставки из буфера обмена.
var DefaultCombinations = []Combination{
	{Keys: []string{KeyControl, "v"}, Event: "Ctrl + v pressed!"},
	{Keys: []string{KeyMeta, "v"}, Event: "Command + v pressed!"},
}

// Sink получает события монитора.
type Sink func(event string)

// Monitor хранит множество зажатых клавиш. Событие отправляется один раз
// при переходе сочетания в зажатое состояние.
type Monitor struct {
	combinations []Combination
	held         map[string]struct{}
	matched      []bool
	sinks        map[int]Sink
	nextSinkID   int
	mu           sync.Mutex
}

// New создает Monitor. Без аргументов используются DefaultCombinations.
func New(combinations ...Combination) *Monitor {
	if len(combinations) == 0 {
		combinations = DefaultCombinations
	}

	normalized := make([]Combination, 0, len(combinations))
	for _, combo := range combinations {
		keys := make([]string, 0, len(combo.Keys))
		for _, k := range combo.Keys {
			keys = append(keys, normalize(k))
		}
		normalized = append(normalized, Combination{Keys: keys, Event: combo.Event})
	}

	return &Monitor{
		combinations: normalized,
		held:         make(map[string]struct{}),
		matched:      make([]bool, len(normalized)),
		sinks:        make(map[int]Sink),
	}
}

// normalize приводит односимвольные клавиши к нижнему регистру.
func normalize(key string) string {
	if utf8.RuneCountInString(key) == 1 {
		return strings.ToLower(key)
	}
	return key
}

// Subscribe добавляет получателя событий и возвращает функцию отписки.
func (m *Monitor) Subscribe(sink Sink) func() {
	m.mu.Lock()
	id := m.nextSinkID
	m.nextSinkID++
	m.sinks[id] = sink
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.sinks, id)
			m.mu.Unlock()
		})
	}
}

// Press отмечает клавишу зажатой.
func (m *Monitor) Press(key string) {
	key = normalize(key)

	m.mu.Lock()
	if _, ok := m.held[key]; ok {
		m.mu.Unlock()
		return
	}
	m.held[key] = struct{}{}
	events, sinks := m.evaluateLocked()
	m.mu.Unlock()

	emit(events, sinks)
}

// Release отмечает клавишу отпущенной.
func (m *Monitor) Release(key string) {
	key = normalize(key)

	m.mu.Lock()
	if _, ok := m.held[key]; !ok {
		m.mu.Unlock()
		return
	}
	delete(m.held, key)
	events, sinks := m.evaluateLocked()
	m.mu.Unlock()

	emit(events, sinks)
}

// Reset забывает все зажатые клавиши.
func (m *Monitor) Reset() {
	m.mu.Lock()
	m.held = make(map[string]struct{})
	for i := range m.matched {
		m.matched[i] = false
	}
	m.mu.Unlock()
}

// Held возвращает зажатые клавиши в отсортированном виде.
func (m *Monitor) Held() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.held))
	for k := range m.held {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

func (m *Monitor) evaluateLocked() ([]string, []Sink) {
	var events []string
	for i, combo := range m.combinations {
		now := m.holdsLocked(combo.Keys)
		if now && !m.matched[i] {
			events = append(events, combo.Event)
		}
		m.matched[i] = now
	}

	if len(events) == 0 || len(m.sinks) == 0 {
		return nil, nil
	}

	ids := make([]int, 0, len(m.sinks))
	for id := range m.sinks {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	sinks := make([]Sink, 0, len(ids))
	for _, id := range ids {
		sinks = append(sinks, m.sinks[id])
	}

	return events, sinks
}

func (m *Monitor) holdsLocked(keys []string) bool {
	for _, k := range keys {
		if _, ok := m.held[k]; !ok {
			return false
		}
	}
	return true
}

func emit(events []string, sinks []Sink) {
	for _, ev := range events {
		for _, sink := range sinks {
			sink(ev)
		}
	}
}
