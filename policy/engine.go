// Package policy evaluates chat admission policy with OPA.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.chat_policy.decision"),
		rego.Module("chat_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate checks the chat policy. Input is a map with keys session_id,
// user_id and user_input. Returns the decision (allow, block).
func (e *Engine) Evaluate(ctx context.Context, input interface{}) (string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		// The policy defines a default, so an empty result set means the
		// module itself is broken; fail open.
		return "allow", nil
	}

	if s, ok := results[0].Expressions[0].Value.(string); ok {
		return s, nil
	}
	return "allow", nil
}

// DefaultPolicy is the default chat admission policy.
const DefaultPolicy = `
package chat_policy

default decision = "allow"

# Reject empty submissions before the model is ever called
decision = "block" {
	trim_space(input.user_input) == ""
}

# Keep a single turn within a sane size
decision = "block" {
	count(input.user_input) > 8000
}
`
