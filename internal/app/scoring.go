package app

const (
	basePoints  = 500
	bonusPoints = 500
)

// Points scores one answer: nothing for a wrong answer, otherwise the base plus
// a speed bonus that decays linearly from full at elapsedMs=0 to zero at the
// deadline. The bonus is floored after scaling, in integer arithmetic.
func Points(correct bool, elapsedMs, durationMs int64) int {
	if !correct {
		return 0
	}
	if durationMs <= 0 {
		return basePoints
	}
	remaining := durationMs - elapsedMs
	if remaining < 0 {
		remaining = 0
	}
	if remaining > durationMs {
		remaining = durationMs
	}
	return basePoints + int(bonusPoints*remaining/durationMs)
}
