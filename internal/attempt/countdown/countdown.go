// Package countdown реализует обратный отсчет времени попытки.
package countdown

import (
	"fmt"
	"sync"
	"time"
)

// Ticker - источник тиков раз в секунду.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory создает Ticker с периодом d.
type TickerFactory func(d time.Duration) Ticker

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker оборачивает time.Ticker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Countdown считает секунды до нуля и один раз вызывает onExpire.
type Countdown struct {
	remaining int
	running   bool
	stop      chan struct{}
	ticker    Ticker

	newTicker TickerFactory
	onExpire  func()
	onTick    func(remaining int)

	mu sync.Mutex
}

// Option настраивает Countdown.
type Option func(c *Countdown)

// OnExpire задает обработчик окончания времени.
func OnExpire(fn func()) Option {
	return func(c *Countdown) {
		c.onExpire = fn
	}
}

// OnTick задает обработчик каждого изменения оставшегося времени.
func OnTick(fn func(remaining int)) Option {
	return func(c *Countdown) {
		c.onTick = fn
	}
}

// WithTickerFactory подменяет источник тиков.
func WithTickerFactory(f TickerFactory) Option {
	return func(c *Countdown) {
		c.newTicker = f
	}
}

// New создает остановленный Countdown.
func New(opts ...Option) *Countdown {
	c := &Countdown{newTicker: NewTimeTicker}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start запускает отсчет с seconds секунд. Повторный вызов сбрасывает отсчет.
// Отрицательное значение считается нулем, ноль сразу вызывает onExpire.
func (c *Countdown) Start(seconds int) {
	if seconds < 0 {
		seconds = 0
	}

	c.mu.Lock()
	c.stopLocked()
	c.remaining = seconds

	if seconds == 0 {
		c.mu.Unlock()
		c.notify(0, true)
		return
	}

	ticker := c.newTicker(time.Second)
	stop := make(chan struct{})
	c.ticker = ticker
	c.stop = stop
	c.running = true
	c.mu.Unlock()

	c.notify(seconds, false)

	go c.loop(ticker, stop)
}

func (c *Countdown) loop(ticker Ticker, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			c.advance(stop)
		}
	}
}

// Tick уменьшает отсчет на одну секунду. На нуле отсчет останавливается.
func (c *Countdown) Tick() {
	c.advance(nil)
}

func (c *Countdown) advance(stop chan struct{}) {
	c.mu.Lock()
	if !c.running || (stop != nil && stop != c.stop) {
		c.mu.Unlock()
		return
	}

	c.remaining--
	remaining := c.remaining
	expired := remaining == 0
	if expired {
		c.stopLocked()
	}
	c.mu.Unlock()

	c.notify(remaining, expired)
}

// Stop останавливает отсчет без вызова onExpire.
func (c *Countdown) Stop() {
	c.mu.Lock()
	c.stopLocked()
	c.mu.Unlock()
}

func (c *Countdown) stopLocked() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
	c.running = false
}

func (c *Countdown) notify(remaining int, expired bool) {
	if c.onTick != nil {
		c.onTick(remaining)
	}
	if expired && c.onExpire != nil {
		c.onExpire()
	}
}

// Remaining возвращает оставшееся время в секундах.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.remaining
}

// Running сообщает, идет ли отсчет.
func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}

func (c *Countdown) String() string {
	return Format(c.Remaining())
}

// Format возвращает время в виде HH:MM:SS. Часы не ограничены сутками.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}
