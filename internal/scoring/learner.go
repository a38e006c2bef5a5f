package scoring

import "math"

// Recommended hyperparameters for UpdateWeights.
const (
	DefaultLearningRate = 0.05
	DefaultL2           = 1e-4
)

// UpdateWeights applies a single logistic-regression SGD step to the weight
// vector, in place. feedback is the label: 1.0 for a good drying outcome,
// 0.0 for a bad one; values in between are accepted as soft labels and
// anything outside [0,1] is coerced in. Each weight is clamped to its fixed
// range after every update, so repeated feedback can never push the model
// into runaway or sign-flipped weights.
//
// Callers sharing one Weights instance across goroutines must serialize
// calls to UpdateWeights; Score only reads.
func UpdateWeights(weights *Weights, features NormalizedFeatures, feedback, learningRate, l2 float64) {
	feedback = clamp(feedback, 0.0, 1.0)

	x := [7]float64{
		1.0,
		features.FTemp,
		features.FHum,
		features.FWind,
		features.FCloud,
		features.FRain,
		features.FVPD,
	}
	w := [7]float64{
		weights.W0,
		weights.W1,
		weights.W2,
		weights.W3,
		weights.W4,
		weights.W5,
		weights.W6,
	}

	z := 0.0
	for i := range w {
		z += w[i] * x[i]
	}
	p := 1.0 / (1.0 + math.Exp(-z))
	err := p - feedback

	for i := range w {
		w[i] -= learningRate * (err*x[i] + 2.0*l2*w[i])
	}

	weights.W0 = clamp(w[0], -0.5, 0.5)
	weights.W1 = clamp(w[1], 0.0, 0.5)
	weights.W2 = clamp(w[2], 0.0, 0.5)
	weights.W3 = clamp(w[3], 0.0, 0.5)
	weights.W4 = clamp(w[4], 0.0, 0.3)
	weights.W5 = clamp(w[5], 0.0, 0.3)
	weights.W6 = clamp(w[6], 0.0, 0.5)
}
