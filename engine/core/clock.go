package core

import "time"

type Clock struct {
	startTime time.Time
	elapsed   time.Duration
	running   bool
}

func NewClock() *Clock {
	return &Clock{}
}

// Updates the provided clock. Should be called just before checking elapsed time.
// Has no effect on non-started clocks.
func (c *Clock) Update() {
	if c.running {
		c.elapsed = time.Since(c.startTime)
	}
}

// Starts the provided clock. Resets elapsed time.
func (c *Clock) Start() {
	c.startTime = time.Now()
	c.elapsed = 0
	c.running = true
}

// Stops the provided clock. Does not reset elapsed time.
func (c *Clock) Stop() {
	c.running = false
}

// Elapsed returns the seconds between Start and the last Update.
func (c *Clock) Elapsed() float64 {
	return c.elapsed.Seconds()
}

// GameTime is the frame timing handed to the game and the renderer, in seconds.
type GameTime struct {
	Total float64
	Delta float64
	Frame uint64
}

// Advance returns the time of the next frame given the clock's current elapsed time.
func (t GameTime) Advance(elapsed float64) GameTime {
	return GameTime{
		Total: elapsed,
		Delta: elapsed - t.Total,
		Frame: t.Frame + 1,
	}
}
