package reembed

import "math"

// NormalizeVector scales a chunk embedding to unit length, so cosine
// similarity against the stored index reduces to a dot product.
// Returns a new vector. A zero vector stays zero.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	// Calculate magnitude
	var magnitude float32
	for _, val := range v {
		magnitude += val * val
	}
	magnitude = float32(math.Sqrt(float64(magnitude)))

	// Can't normalize zero vector
	if magnitude == 0 {
		result := make([]float32, len(v))
		return result
	}

	// Normalize
	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = val / magnitude
	}
	return result
}
