package core

const (
	lowerThreshold = 50
	upperThreshold = 100
	// upperMultiplier is the points earned per unit spent above upperThreshold.
	upperMultiplier = 2
)

// CalculatePoints applies the tiered reward formula to a whole-unit amount:
// nothing up to 50, one point per unit between 50 and 100, and two points
// per unit above 100 on top of the 50 earned in the middle band.
func CalculatePoints(amount int64) int64 {
	switch {
	case amount <= lowerThreshold:
		return 0
	case amount <= upperThreshold:
		return amount - lowerThreshold
	default:
		return (upperThreshold - lowerThreshold) + upperMultiplier*(amount-upperThreshold)
	}
}

// PointsFor truncates m to whole units before applying CalculatePoints.
// 100.99 earns the same as 100.
func PointsFor(m Money) int64 {
	return CalculatePoints(m.WholeUnits())
}
