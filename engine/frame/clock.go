package frame

// MaxElapsed caps the time step between two frames in seconds, so a stalled
// window does not make the animation jump.
const MaxElapsed = 0.1

// Clock tracks the two shader clocks. Time advances only while the scene is
// animated; RealTime advances on every frame. The zero value is ready to use
// and treats the first frame as following a frame at t=0.
type Clock struct {
	then     float64
	time     float64
	realTime float64
}

// Tick advances the clock to now.
//
// Parameters:
//   - now: seconds since the program started
//   - animated: whether the animation clock should advance
//
// Returns:
//   - time: the animation clock in seconds
//   - realTime: the wall clock in seconds
func (c *Clock) Tick(now float64, animated bool) (time, realTime float32) {
	elapsed := min(max(now-c.then, 0), MaxElapsed)
	c.realTime += elapsed
	if animated {
		c.time += elapsed
	}
	c.then = now
	return float32(c.time), float32(c.realTime)
}

// Time returns the animation clock in seconds.
func (c *Clock) Time() float32 {
	return float32(c.time)
}

// RealTime returns the wall clock in seconds.
func (c *Clock) RealTime() float32 {
	return float32(c.realTime)
}
