package sounding

import "fmt"

// Example returns a synthetic sounding for one of three canonical
// scenarios, used by tests and the CLI when no real data is available:
//
//	"low"      — strong cap, minimal CAPE, safe flying conditions
//	"moderate" — weak cap, moderate CAPE, typical summer day
//	"high"     — no cap, high CAPE, severe thunderstorm potential
func Example(scenario string) (*Profile, error) {
	var data Levels
	switch scenario {
	case "low":
		data = Levels{
			Pressure: []float64{1013, 1000, 975, 950, 925, 900, 850, 800, 750, 700,
				650, 600, 550, 500, 450, 400, 350, 300, 250, 200},
			Temperature: []float64{10, 9, 7, 5, 3, 1, -2, -5, -8, -11,
				-14, -17.5, -21, -25, -29.5, -34.5, -40, -46.5, -54, -62},
			Dewpoint: []float64{-5, -5.5, -6, -6.5, -7, -8, -10, -12, -14, -16,
				-18.5, -21.5, -25, -29, -33.5, -38.5, -44, -50.5, -58, -66},
		}
	case "moderate":
		data = Levels{
			Pressure: []float64{1000, 975, 950, 925, 900, 850, 800, 750, 700, 650,
				600, 550, 500, 450, 400, 350, 300, 250, 200},
			Temperature: []float64{26, 24, 22, 20, 18, 14, 10, 6, 2, -2,
				-6, -10.5, -15, -20, -25.5, -31.5, -38.5, -46.5, -55.5},
			Dewpoint: []float64{18, 17, 16, 15, 14, 11, 8, 4, 0, -4,
				-9, -14.5, -20, -26, -32.5, -39.5, -47.5, -56.5, -66.5},
		}
	case "high":
		data = Levels{
			Pressure: []float64{1000, 975, 950, 925, 900, 850, 800, 750, 700, 650,
				600, 550, 500, 450, 400, 350, 300, 250, 200},
			Temperature: []float64{28, 26, 24, 22, 20, 16, 12, 8, 4, 0,
				-4, -8, -12, -17, -22, -28, -35, -44, -54},
			Dewpoint: []float64{22, 20, 18, 16, 14, 10, 6, 2, -2, -6,
				-10, -14, -18, -23, -28, -34, -41, -50, -60},
		}
	default:
		return nil, fmt.Errorf("unknown example scenario %q", scenario)
	}
	return New(data)
}
