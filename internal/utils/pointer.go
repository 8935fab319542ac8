package utils

// Ptr returns a pointer to a copy of v, for optional wire fields such as
// Gemini's generationConfig.temperature.
func Ptr[T any](v T) *T {
	return &v
}
