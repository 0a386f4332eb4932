package axis

import "math"

// profile is the trapezoidal speed ramp shared by the simulated and the
// pin-driven axis. Speeds are in steps/s, acceleration in steps/s².
type profile struct {
	pos, target int64
	speed       float64
	frac        float64
	maxSpeed    float64
	accel       float64
}

func (p *profile) distanceToGo() int64 { return p.target - p.pos }

func (p *profile) moveTo(target int64) {
	p.target = target
	if target == p.pos {
		p.speed, p.frac = 0, 0
	}
}

// stop retargets to the closest position reachable under the current
// deceleration.
func (p *profile) stop() {
	if p.speed == 0 || p.accel <= 0 {
		p.moveTo(p.pos)
		return
	}
	n := int64(math.Ceil(p.speed * p.speed / (2 * p.accel)))
	if p.speed < 0 {
		n = -n
	}
	p.moveTo(p.pos + n)
}

// minSpeed is roughly the speed after accelerating from rest over a single
// step; below it the ramp would crawl.
func (p *profile) minSpeed() float64 {
	return math.Min(math.Sqrt(p.accel), p.maxSpeed)
}

// advance integrates the ramp over dt seconds and returns the signed number
// of whole steps to emit. It never steps past the target.
func (p *profile) advance(dt float64) int64 {
	return p.advanceAtMost(dt, 0)
}

// advanceAtMost is advance with at most limit steps per call; zero means no
// limit. Steps the caller was too slow to emit are dropped, so the axis
// moves no faster than it is called.
func (p *profile) advanceAtMost(dt float64, limit int64) int64 {
	dist := p.distanceToGo()
	if dist == 0 {
		p.speed, p.frac = 0, 0
		return 0
	}
	if p.accel <= 0 || p.maxSpeed <= 0 {
		return 0
	}

	dir := 1.0
	if dist < 0 {
		dir = -1
	}
	v := p.speed * dir
	remaining := math.Abs(float64(dist))
	stopping := v * v / (2 * p.accel)

	switch {
	case v < 0:
		v += p.accel * dt
	case stopping >= remaining:
		v = math.Max(v-p.accel*dt, p.minSpeed())
	default:
		v = math.Min(v+p.accel*dt, p.maxSpeed)
		v = math.Max(v, p.minSpeed())
	}
	p.speed = v * dir

	p.frac += p.speed * dt
	whole := int64(p.frac)
	if whole*int64(dir) > 0 && abs(whole) > abs(dist) {
		whole = dist
	}
	p.frac -= float64(whole)
	if limit > 0 && abs(whole) > limit {
		if whole < 0 {
			whole = -limit
		} else {
			whole = limit
		}
		p.frac = math.Mod(p.frac, 1)
	}
	p.pos += whole
	if p.pos == p.target {
		p.speed, p.frac = 0, 0
	}
	return whole
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
