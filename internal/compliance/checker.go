package compliance

import (
	"context"
	"fmt"

	"github.com/vk/usdcheck/internal/ctxlog"
	"github.com/vk/usdcheck/internal/engine"
	"github.com/vk/usdcheck/internal/usd"
)

// Config is the checker's immutable construction-time configuration. There
// is no process-wide checker state; two checkers with different configs can
// coexist.
type Config struct {
	// ARKit enables the strict ARKit rule set on top of the base rules.
	ARKit bool
	// SkipRootLayerCheck disables the root layer metadata rule.
	SkipRootLayerCheck bool
	// RootPackageOnly restricts package rules to the default layer entry
	// instead of every entry in the archive.
	RootPackageOnly bool
	// SkipVariants skips variant-set expansion. The stage reader does not
	// compose variants, so this is accepted for contract parity and has no
	// further effect.
	SkipVariants bool
	// Verbose enables per-rule debug logging.
	Verbose bool
	// DisabledRules names rules excluded from the run.
	DisabledRules []string
	// AllowedExtensions overrides the package file-extension allow list.
	// Nil keeps the built-in ARKit set.
	AllowedExtensions []string
}

// DefaultConfig is the strict configuration the CLI runs with: ARKit rules
// on, root layer checked, full package scope, variants included.
func DefaultConfig() Config {
	return Config{ARKit: true}
}

// Checker implements engine.Checker. It is stateless across runs: every
// CheckCompliance call builds fresh rule instances, so concurrent runs over
// different files cannot contaminate each other.
type Checker struct {
	cfg      Config
	disabled map[string]bool
}

// New constructs a checker from its configuration. Unknown names in
// DisabledRules are rejected so profile typos surface immediately.
func New(cfg Config) (*Checker, error) {
	known := make(map[string]bool, len(RuleNames()))
	for _, name := range RuleNames() {
		known[name] = true
	}
	disabled := make(map[string]bool, len(cfg.DisabledRules))
	for _, name := range cfg.DisabledRules {
		if !known[name] {
			return nil, fmt.Errorf("unknown compliance rule %q", name)
		}
		disabled[name] = true
	}
	return &Checker{cfg: cfg, disabled: disabled}, nil
}

// CheckCompliance opens the file independently of the structural traversal
// and runs every enabled rule over it.
func (c *Checker) CheckCompliance(ctx context.Context, path string) (engine.ComplianceResult, error) {
	logger := ctxlog.FromContext(ctx).With("file", path)

	stage, err := usd.Open(path)
	if err != nil {
		return engine.ComplianceResult{}, fmt.Errorf("compliance check: %w", err)
	}

	var result engine.ComplianceResult
	for _, r := range c.newRules() {
		if c.disabled[r.Identifier()] {
			continue
		}
		r.check(stage)
		if c.cfg.Verbose {
			logger.Debug("Compliance rule finished.", "rule", r.Identifier(), "failed_checks", r.FailedChecks())
		}
		result.Rules = append(result.Rules, r)
		result.FailedChecks = append(result.FailedChecks, r.failures()...)
	}
	return result, nil
}

// newRules builds the rule instances for one run, base rules first, ARKit
// rules after.
func (c *Checker) newRules() []rule {
	rules := []rule{
		newByteAlignmentRule(c.cfg),
		newCompressionRule(c.cfg),
		newMissingReferenceRule(),
	}
	if c.cfg.ARKit {
		rules = append(rules,
			newFileExtensionRule(c.cfg),
			newPrimTypeRule(),
		)
		if !c.cfg.SkipRootLayerCheck {
			rules = append(rules, newRootLayerRule())
		}
	}
	return rules
}
