package llm

// Sampling holds the fixed generation parameters applied by every adapter.
type Sampling struct {
	Temperature     float64
	TopP            float64
	TopK            int // ignored by providers that do not expose it
	MaxOutputTokens int
}

// DefaultSampling is the adapter-level configuration. It is not a request parameter.
var DefaultSampling = Sampling{
	Temperature:     0.9,
	TopP:            0.95,
	TopK:            1,
	MaxOutputTokens: 1024,
}
