package testutil

// FixedTraceGenerator generates the same trace id every time.
//
// CLI responses carry a per-invocation trace id; pinning it makes JSON
// output byte-identical across runs for golden comparison.
//
// Thread-safety: FixedTraceGenerator is stateless and safe for concurrent use.
type FixedTraceGenerator struct {
	token string
}

// NewFixedTraceGenerator creates a new fixed trace id generator.
// If token is empty, Generate() returns "test-trace-default".
func NewFixedTraceGenerator(token string) *FixedTraceGenerator {
	if token == "" {
		token = "test-trace-default"
	}
	return &FixedTraceGenerator{token: token}
}

// Generate returns the fixed trace id.
//
// Implements cli.TraceGenerator.
func (g *FixedTraceGenerator) Generate() string {
	return g.token
}
