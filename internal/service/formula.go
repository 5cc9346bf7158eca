package service

import (
	"math"
	"strconv"
)

// Pure numeric formulas over body measurements. Domain errors (missing
// fields, non-positive log arguments) resolve to "no value", never to a
// NaN or a panic.

// BMI returns weight / height(m)^2 with one decimal, formatted the way the
// measurement form renders it. A zero height yields "0.0" instead of a
// division by zero.
func BMI(weightKg, heightCm float64) string {
	if heightCm == 0 {
		return "0.0"
	}
	heightM := heightCm / 100
	return strconv.FormatFloat(weightKg/(heightM*heightM), 'f', 1, 64)
}

// BodyFatPercent estimates body fat with the US Navy circumference method.
// Expected fields: waist, neck, height, plus hips for the female formula.
// The second return is false when the inputs are insufficient or the
// formula is undefined for them.
func BodyFatPercent(measurements map[string]float64, gender string) (float64, bool) {
	waist := measurements["waist"]
	neck := measurements["neck"]
	height := measurements["height"]
	hips := measurements["hips"]

	if waist == 0 || neck == 0 || height == 0 {
		return 0, false
	}

	var bodyFat float64
	if gender == "male" {
		if waist-neck <= 0 {
			return 0, false
		}
		bodyFat = 495/(1.0324-0.19077*math.Log10(waist-neck)+0.1554*math.Log10(height)) - 450
	} else {
		if hips == 0 || waist+hips-neck <= 0 {
			return 0, false
		}
		bodyFat = 495/(1.29579-0.35004*math.Log10(waist+hips-neck)+0.22100*math.Log10(height)) - 450
	}
	if bodyFat <= 0 {
		return 0, false
	}
	return round1(bodyFat), true
}

type DeltaDirection string

const (
	DeltaUp   DeltaDirection = "up"
	DeltaDown DeltaDirection = "down"
	DeltaFlat DeltaDirection = "flat"
)

type Delta struct {
	Direction DeltaDirection `json:"direction"`
	Magnitude float64        `json:"magnitude"`
}

// ComputeDelta classifies the movement between two sampled values given as
// strings (the form-level representation). Differences under 0.1 are flat.
// The second return is false when either side is absent or non-numeric.
func ComputeDelta(current, previous string) (Delta, bool) {
	if current == "" || previous == "" {
		return Delta{}, false
	}
	cur, err := strconv.ParseFloat(current, 64)
	if err != nil {
		return Delta{}, false
	}
	prev, err := strconv.ParseFloat(previous, 64)
	if err != nil {
		return Delta{}, false
	}
	diff := cur - prev
	d := Delta{Magnitude: round1(math.Abs(diff))}
	switch {
	case math.Abs(diff) < 0.1:
		d.Direction = DeltaFlat
	case diff > 0:
		d.Direction = DeltaUp
	default:
		d.Direction = DeltaDown
	}
	return d, true
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
