package spectrum

import "github.com/RMahshie/satscan/pkg/models"

// Summary describes the bounds of a point set
type Summary struct {
	Count         int
	MinFrequency  float64
	MaxFrequency  float64
	MinPower      float64
	MaxPower      float64
	PeakFrequency float64
}

// Summarize computes frequency and power bounds. The peak is the frequency of
// the first point holding the maximum power.
func Summarize(points []models.SpectrumPoint) Summary {
	if len(points) == 0 {
		return Summary{}
	}

	first := points[0]
	s := Summary{
		Count:         len(points),
		MinFrequency:  first.Frequency,
		MaxFrequency:  first.Frequency,
		MinPower:      first.Power,
		MaxPower:      first.Power,
		PeakFrequency: first.Frequency,
	}
	for _, p := range points[1:] {
		s.MinFrequency = min(s.MinFrequency, p.Frequency)
		s.MaxFrequency = max(s.MaxFrequency, p.Frequency)
		s.MinPower = min(s.MinPower, p.Power)
		if p.Power > s.MaxPower {
			s.MaxPower = p.Power
			s.PeakFrequency = p.Frequency
		}
	}
	return s
}
