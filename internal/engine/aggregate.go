package engine

import (
	"fmt"
	"io"
)

// aggregate merges the structural traversal outcome with the compliance
// checker outcome into one FileReport. The error sequence is ordered:
// checker rule failures first (namespace-prefixed), then checker free-text
// issues, then structural validator records. Success is derived from the
// sequence, so a pass requires every source to be clean.
//
// Checker free-text errors and failed rules are two independent signal
// channels; they are never deduplicated even when they describe the same
// underlying defect.
func aggregate(file string, structuralOK bool, structural []Record, res ComplianceResult, verbose bool, diagW io.Writer) FileReport {
	// Diagnostic reporting only; nothing written here may influence the verdict.
	if diagW != nil && (verbose || len(res.Errors) > 0 || len(res.FailedChecks) > 0) {
		writeCheckerDiagnostics(diagW, file, res)
	}

	report := FileReport{File: file}
	for _, rule := range res.FailedRules() {
		report.Errors = append(report.Errors, Record{Code: RuleCodePrefix + rule.Identifier()})
	}
	for _, msg := range res.Errors {
		report.Errors = append(report.Errors, Record{Code: CodeCheckerIssue, Detail: msg})
	}
	report.Errors = append(report.Errors, structural...)

	// Validators must record what they reject. If one did not, keep the
	// failing verdict rather than let it vanish.
	if !structuralOK && len(structural) == 0 {
		report.Errors = append(report.Errors, Record{
			Code:   CodeValidatorDivergence,
			Detail: "a structural validator reported failure without recording a violation",
		})
	}
	return report
}

// writeCheckerDiagnostics prints the checker's free-text errors and failed
// check names to the diagnostic stream.
func writeCheckerDiagnostics(w io.Writer, file string, res ComplianceResult) {
	for _, msg := range res.Errors {
		fmt.Fprintf(w, "%s: error: %s\n", file, msg)
	}
	if len(res.FailedChecks) > 0 {
		fmt.Fprintf(w, "%s: failed checks:\n", file)
		for _, name := range res.FailedChecks {
			fmt.Fprintf(w, "\t- %s\n", name)
		}
	}
}
