package ions

// Score is the mean over the six ions of the squared difference between
// result and target. It is symmetric and zero only for identical profiles.
func Score(result, target Profile) float64 {
	var sum float64
	for _, ion := range All {
		d := result.Get(ion) - target.Get(ion)
		sum += d * d
	}
	return sum / Count
}
