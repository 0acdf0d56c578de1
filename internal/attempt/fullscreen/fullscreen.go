// Package fullscreen управляет полноэкранным режимом попытки.
package fullscreen

import (
	"sort"
	"sync"
)

// Controller определяет интерфейс полноэкранного режима.
type Controller interface {
	// Enter включает полноэкранный режим.
	Enter() error

	// Exit выключает полноэкранный режим.
	Exit() error

	// Active сообщает, включен ли режим.
	Active() bool

	// Subscribe добавляет слушателя изменений режима и возвращает функцию отписки.
	Subscribe(listener func(active bool)) func()
}

// Switch хранит состояние режима и вызывает хуки слоя отображения.
type Switch struct {
	active     bool
	onEnter    func() error
	onExit     func() error
	listeners  map[int]func(bool)
	nextListen int
	mu         sync.Mutex
}

var _ Controller = (*Switch)(nil)

// Option настраивает Switch.
type Option func(s *Switch)

// WithHooks задает хуки, которые переключают режим на экране.
func WithHooks(enter, exit func() error) Option {
	return func(s *Switch) {
		s.onEnter = enter
		s.onExit = exit
	}
}

// NewSwitch создает выключенный Switch.
func NewSwitch(opts ...Option) *Switch {
	s := &Switch{listeners: make(map[int]func(bool))}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enter включает режим. Повторный вызов ничего не делает.
func (s *Switch) Enter() error {
	return s.request(true)
}

// Exit выключает режим. Повторный вызов ничего не делает.
func (s *Switch) Exit() error {
	return s.request(false)
}

func (s *Switch) request(active bool) error {
	s.mu.Lock()
	if s.active == active {
		s.mu.Unlock()
		return nil
	}
	hook := s.onExit
	if active {
		hook = s.onEnter
	}
	s.mu.Unlock()

	if hook != nil {
		if err := hook(); err != nil {
			return err
		}
	}

	s.Set(active)
	return nil
}

// Set фиксирует изменение режима, которое произошло без запроса,
// например выход по Escape.
func (s *Switch) Set(active bool) {
	s.mu.Lock()
	if s.active == active {
		s.mu.Unlock()
		return
	}
	s.active = active

	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	listeners := make([]func(bool), 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, s.listeners[id])
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(active)
	}
}

// Active сообщает, включен ли режим.
func (s *Switch) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.active
}

// Subscribe добавляет слушателя изменений режима.
func (s *Switch) Subscribe(listener func(active bool)) func() {
	s.mu.Lock()
	id := s.nextListen
	s.nextListen++
	s.listeners[id] = listener
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}
