package live

import "time"

// ClockState — снимок секундомера матча. Живёт только в рамках сессии,
// в БД не сохраняется.
type ClockState struct {
	CurrentHalf    int  `json:"current_half"`
	Running        bool `json:"running"`
	ElapsedSeconds int  `json:"elapsed_seconds"`
	CurrentMinute  int  `json:"current_minute"`
}

// Clock — машина состояний таймера: текущий тайм, запущен/на паузе,
// прошедшие секунды. Идёт от якоря по настенным часам, поэтому пауза и
// возобновление не дают скачков. Внешних зависимостей нет, отказов нет —
// только ограничения на диапазоны.
type Clock struct {
	halves      int
	halfMinutes int

	currentHalf int
	running     bool
	frozen      time.Duration // накопленное время на момент паузы
	anchor      time.Time     // момент "нуля" при запущенном таймере

	now func() time.Time
}

func NewClock(halves, halfMinutes int) *Clock {
	if halves < 1 {
		halves = 1
	}
	if halfMinutes < 1 {
		halfMinutes = 1
	}
	return &Clock{
		halves:      halves,
		halfMinutes: halfMinutes,
		currentHalf: 1,
		now:         time.Now,
	}
}

// StartOrPause переключает Running ⇄ Idle. При запуске якорь ставится в
// "сейчас минус уже прошедшее", чтобы возобновление продолжало счёт без скачка.
func (c *Clock) StartOrPause() {
	if c.running {
		c.frozen = c.now().Sub(c.anchor)
		c.running = false
		return
	}
	c.anchor = c.now().Add(-c.frozen)
	c.running = true
}

// FinishHalf останавливает таймер и сбрасывает прошедшее время в ноль.
// Номер тайма не меняет.
func (c *Clock) FinishHalf() {
	c.running = false
	c.frozen = 0
	c.anchor = time.Time{}
}

// NextHalf завершает текущий тайм и переходит к следующему. За пределами
// [1, halves] номер тайма не меняется, но сброс таймера происходит всегда.
func (c *Clock) NextHalf() {
	c.FinishHalf()
	if c.currentHalf < c.halves {
		c.currentHalf++
	}
}

func (c *Clock) PrevHalf() {
	c.FinishHalf()
	if c.currentHalf > 1 {
		c.currentHalf--
	}
}

func (c *Clock) elapsed() time.Duration {
	if c.running {
		return c.now().Sub(c.anchor)
	}
	return c.frozen
}

// CurrentMinute — минута, которую по умолчанию получают новые события:
// clamp(floor(elapsed/60)+1, 1, halfMinutes).
func (c *Clock) CurrentMinute() int {
	return clamp(int(c.elapsed()/time.Minute)+1, 1, c.halfMinutes)
}

func (c *Clock) Running() bool { return c.running }

// State возвращает снимок для UI и трансляции.
func (c *Clock) State() ClockState {
	return ClockState{
		CurrentHalf:    c.currentHalf,
		Running:        c.running,
		ElapsedSeconds: int(c.elapsed() / time.Second),
		CurrentMinute:  c.CurrentMinute(),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
