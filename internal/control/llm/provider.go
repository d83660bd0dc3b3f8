package llm

import "context"

// Evaluator runs one control prompt against a piece of document text and
// returns the model's raw answer. Errors are returned as-is, the executor
// decides how a failure is recorded.
type Evaluator interface {
	Evaluate(ctx context.Context, prompt string) (string, error)
}

// Grader turns one evaluation result into a raw score string. Parsing and
// clamping happen downstream, the grader only transports the model answer.
type Grader interface {
	Grade(ctx context.Context, prompt string) (string, error)
}

// Provider is a backend that can serve both roles.
type Provider interface {
	Evaluator
	Grader
}
