package anomaly

import "fmt"

// FromSettings builds a detection config from externally supplied
// values, validating bounds.
func FromSettings(stddevThreshold float64, sensitivityLevel, minDataPoints int, tieBreak string) (Config, error) {
	if sensitivityLevel < 1 || sensitivityLevel > 5 {
		return Config{}, fmt.Errorf("sensitivity level must be between 1 and 5, got %d", sensitivityLevel)
	}
	if stddevThreshold <= 0 {
		return Config{}, fmt.Errorf("stddev threshold must be positive, got %g", stddevThreshold)
	}
	if minDataPoints < 1 {
		return Config{}, fmt.Errorf("min data points must be at least 1, got %d", minDataPoints)
	}

	policy, err := ParseTieBreak(tieBreak)
	if err != nil {
		return Config{}, err
	}

	return Config{
		SensitivityLevel: sensitivityLevel,
		MinDataPoints:    minDataPoints,
		StddevThreshold:  stddevThreshold,
		TieBreak:         policy,
	}, nil
}
