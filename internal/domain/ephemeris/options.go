package ephemeris

import "time"

// Option configures a Keplerian provider.
type Option func(*Keplerian)

// WithYearRange sets the inclusive supported window in calendar years (UTC).
func WithYearRange(minYear, maxYear int) Option {
	return func(k *Keplerian) {
		if minYear > 0 && maxYear >= minYear {
			k.min = time.Date(minYear, time.January, 1, 0, 0, 0, 0, time.UTC)
			k.max = time.Date(maxYear, time.December, 31, 23, 59, 59, 0, time.UTC)
		}
	}
}

// WithMotionStep sets the interval used for daily motion.
func WithMotionStep(step time.Duration) Option {
	return func(k *Keplerian) {
		if step > 0 {
			k.step = step
		}
	}
}
