package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stubRule implements Rule for tests.
type stubRule struct {
	id     string
	failed int
}

func (r stubRule) Identifier() string { return r.id }
func (r stubRule) FailedChecks() int  { return r.failed }

func TestAggregate_MergeOrderAndProvenance(t *testing.T) {
	res := ComplianceResult{
		Errors: []string{"could not resolve texture"},
		Rules: []Rule{
			stubRule{id: "RuleX", failed: 2},
			stubRule{id: "CleanRule", failed: 0},
			stubRule{id: "RuleY", failed: 1},
		},
	}
	structural := []Record{{Code: "MeshMissingPoints", Detail: "prim /M has no points"}}

	report := aggregate("a.usda", false, structural, res, false, nil)

	assert.False(t, report.Success())
	assert.Equal(t, []Record{
		{Code: "PXR_RuleX"},
		{Code: "PXR_RuleY"},
		{Code: CodeCheckerIssue, Detail: "could not resolve texture"},
		{Code: "MeshMissingPoints", Detail: "prim /M has no points"},
	}, report.Errors)
}

func TestAggregate_UnanimityRequired(t *testing.T) {
	t.Run("all clean passes", func(t *testing.T) {
		report := aggregate("a.usda", true, nil, ComplianceResult{Rules: []Rule{stubRule{id: "R"}}}, false, nil)
		assert.True(t, report.Success())
		assert.Empty(t, report.Errors)
	})

	t.Run("checker free-text error alone fails", func(t *testing.T) {
		report := aggregate("a.usda", true, nil, ComplianceResult{Errors: []string{"boom"}}, false, nil)
		assert.False(t, report.Success())
		assert.Equal(t, CodeCheckerIssue, report.Errors[0].Code)
	})

	t.Run("failed rule alone fails", func(t *testing.T) {
		report := aggregate("a.usda", true, nil, ComplianceResult{Rules: []Rule{stubRule{id: "RuleX", failed: 1}}}, false, nil)
		assert.False(t, report.Success())
		assert.Equal(t, []Record{{Code: "PXR_RuleX"}}, report.Errors)
	})

	t.Run("structural record alone fails", func(t *testing.T) {
		report := aggregate("a.usda", false, []Record{{Code: "MeshMissingPoints"}}, ComplianceResult{}, false, nil)
		assert.False(t, report.Success())
	})
}

func TestAggregate_ValidatorDivergenceGuard(t *testing.T) {
	// A validator returning false without records breaks its contract; the
	// verdict must stay a failure anyway.
	report := aggregate("a.usda", false, nil, ComplianceResult{}, false, nil)
	assert.False(t, report.Success())
	assert.Equal(t, CodeValidatorDivergence, report.Errors[0].Code)
}

func TestAggregate_Diagnostics(t *testing.T) {
	res := ComplianceResult{
		Errors:       []string{"free text"},
		FailedChecks: []string{"RuleX: entry misaligned"},
	}

	t.Run("written when the checker reported", func(t *testing.T) {
		var sb strings.Builder
		aggregate("a.usda", true, nil, res, false, &sb)
		assert.Contains(t, sb.String(), "free text")
		assert.Contains(t, sb.String(), "RuleX: entry misaligned")
	})

	t.Run("silent on clean non-verbose runs", func(t *testing.T) {
		var sb strings.Builder
		aggregate("a.usda", true, nil, ComplianceResult{}, false, &sb)
		assert.Empty(t, sb.String())
	})

	t.Run("verbose writes even when clean", func(t *testing.T) {
		var sb strings.Builder
		aggregate("a.usda", true, nil, ComplianceResult{FailedChecks: nil}, true, &sb)
		// Nothing to report, but the call must not panic or fail.
		_ = sb.String()
	})

	t.Run("diagnostics never change the verdict", func(t *testing.T) {
		var sb strings.Builder
		report := aggregate("a.usda", true, nil, ComplianceResult{FailedChecks: []string{"note"}}, false, &sb)
		assert.True(t, report.Success())
		assert.Contains(t, sb.String(), "note")
	})
}
