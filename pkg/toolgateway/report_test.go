// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package toolgateway

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseValidationReport_MinimalValid(t *testing.T) {
	report, err := ParseValidationReport([]byte(`{"valid": true}`))
	require.NoError(t, err)
	require.True(t, report.Valid)
}

func TestParseValidationReport_WithIssues(t *testing.T) {
	raw := []byte(`{
		"valid": false,
		"summary": "2 errors",
		"errors": [
			{"file": "instance.xml", "line": 12, "column": 4, "rule": "NDR-rule-1", "severity": "error", "message": "unknown element"}
		],
		"warnings": [
			{"file": "instance.xml", "severity": "warning", "message": "deprecated namespace"}
		]
	}`)
	report, err := ParseValidationReport(raw)
	require.NoError(t, err)
	require.False(t, report.Valid)
	require.Len(t, report.Errors, 1)
	require.Len(t, report.Warnings, 1)
}

func TestValidationReport_Format_IncludesIssueText(t *testing.T) {
	report := &ValidationReport{
		Valid: false,
		Errors: []ValidationIssue{
			{File: "instance.xml", Line: 3, Severity: SeverityError, Message: "unknown element j:Foo"},
		},
	}
	out := report.Format(true)
	require.Contains(t, out, "INVALID")
	require.Contains(t, out, "instance.xml:3")
	require.Contains(t, out, "unknown element j:Foo")
}

func TestValidationReport_Format_ValidNoIssues(t *testing.T) {
	report := &ValidationReport{Valid: true, Summary: "0 errors"}
	out := report.Format(true)
	require.Contains(t, out, "VALID")
	require.Contains(t, out, "0 errors")
}
