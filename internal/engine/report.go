package engine

import (
	json "github.com/goccy/go-json"
)

// Error codes the engine itself produces. Codes from structural validators
// and the compliance checker are defined by those collaborators; checker
// rule codes always carry the RuleCodePrefix namespace marker.
const (
	// CodeOpenError marks a file that could not be opened as a scene.
	CodeOpenError = "OpenError"
	// CodeCheckerError marks a compliance-checker run that failed outright.
	CodeCheckerError = "ComplianceCheckerError"
	// CodeCheckerIssue marks a free-text error reported by the compliance
	// checker outside of any named rule.
	CodeCheckerIssue = "PXR_ComplianceChecker"
	// CodeValidatorDivergence marks a structural validator that reported
	// failure without recording any violation. Validators are required to
	// record at least one; this code keeps the verdict honest if one does not.
	CodeValidatorDivergence = "StructuralValidatorDivergence"
)

// RuleCodePrefix namespaces failed compliance-rule identifiers so their
// provenance stays distinguishable from structural validator codes.
const RuleCodePrefix = "PXR_"

// Record is one validation failure: a stable machine-readable code plus an
// optional human-readable detail. Detail is never parsed downstream.
type Record struct {
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}

// FileReport is the merged validation outcome for one input file. Success is
// derived from the error list, never stored, so verdict and evidence cannot
// diverge.
type FileReport struct {
	File   string
	Errors []Record
}

// Success reports whether the file passed: true iff no errors were recorded.
func (r FileReport) Success() bool { return len(r.Errors) == 0 }

// MarshalJSON includes the derived success verdict alongside the error list.
func (r FileReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		File    string   `json:"file"`
		Errors  []Record `json:"errors"`
		Success bool     `json:"success"`
	}{
		File:    r.File,
		Errors:  append([]Record{}, r.Errors...),
		Success: r.Success(),
	})
}

// BatchReport holds one FileReport per input file, in request order.
type BatchReport struct {
	Files []FileReport `json:"files"`
}

// Success reports whether every file in the batch passed.
func (b BatchReport) Success() bool {
	for _, f := range b.Files {
		if !f.Success() {
			return false
		}
	}
	return true
}
