package sim

// Virtual time units. One tick is one millisecond.
const (
	Millisecond int64 = 1
	Second            = 1000 * Millisecond
	Minute            = 60 * Second
	Hour              = 60 * Minute
	Day               = 24 * Hour
)

// Seconds converts s seconds to ticks.
func Seconds(s int64) int64 { return s * Second }

// Minutes converts m minutes to ticks.
func Minutes(m int64) int64 { return m * Minute }

// Hours converts h hours to ticks.
func Hours(h int64) int64 { return h * Hour }
