package engine

import "context"

// Rule is the contract a compliance rule must implement for the engine to
// merge its outcome. The engine never inspects what a rule checks; a nonzero
// failed-check count is a failed rule.
type Rule interface {
	// Identifier returns the stable rule class name, e.g. "TextureChecker".
	Identifier() string
	// FailedChecks returns the number of checks the rule failed.
	FailedChecks() int
}

// ComplianceResult is everything a compliance checker run exposes: free-text
// errors, the names of failed top-level checks, and the rules that ran.
// Errors and FailedChecks are diagnostic text for humans; the verdict comes
// from their presence, never their content.
type ComplianceResult struct {
	Errors       []string
	FailedChecks []string
	Rules        []Rule
}

// FailedRules returns the rules whose failed-check count is nonzero, in
// rule order.
func (r ComplianceResult) FailedRules() []Rule {
	var failed []Rule
	for _, rule := range r.Rules {
		if rule.FailedChecks() > 0 {
			failed = append(failed, rule)
		}
	}
	return failed
}

// Checker is the independently-run compliance collaborator. It inspects the
// file on its own, without sharing any state with the structural traversal.
type Checker interface {
	CheckCompliance(ctx context.Context, path string) (ComplianceResult, error)
}
