// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package toolgateway

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Severity classifies a ValidationIssue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationIssue is one finding from schema or instance validation (§3).
type ValidationIssue struct {
	File     string   `json:"file"`
	Line     int      `json:"line,omitempty"`
	Column   int      `json:"column,omitempty"`
	Rule     string   `json:"rule,omitempty"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// ValidationReport is the structured result of ValidateXMLAgainstSchema,
// ValidateJSONAgainstSchema, or ValidateSchemaBundle (§3, §4.2).
type ValidationReport struct {
	Valid    bool              `json:"valid"`
	Summary  string            `json:"summary,omitempty"`
	Errors   []ValidationIssue `json:"errors,omitempty"`
	Warnings []ValidationIssue `json:"warnings,omitempty"`
}

// ParseValidationReport decodes the external tool's JSON stdout into a
// ValidationReport. A bare `{"valid": true}` or `{"valid": false}` with no
// errors/warnings array is accepted, matching the minimal shape the
// canonicalizer emits when a bundle is structurally sound.
func ParseValidationReport(raw []byte) (*ValidationReport, error) {
	var report ValidationReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("parse validation report: %w", err)
	}
	return &report, nil
}

var (
	reportColorOK   = color.New(color.FgGreen, color.Bold)
	reportColorFail = color.New(color.FgRed, color.Bold)
	reportColorWarn = color.New(color.FgYellow)
)

// Format renders the report as a human-readable table for terminal
// display, mirroring UserError.Format's color conventions: NO_COLOR and
// the noColor parameter both suppress ANSI output.
func (r *ValidationReport) Format(noColor bool) string {
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()
	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	if r.Valid {
		out.WriteString(reportColorOK.Sprint("VALID"))
	} else {
		out.WriteString(reportColorFail.Sprint("INVALID"))
	}
	if r.Summary != "" {
		out.WriteString("  ")
		out.WriteString(r.Summary)
	}
	out.WriteString("\n")

	for _, issue := range r.Errors {
		out.WriteString(reportColorFail.Sprint("  error  "))
		out.WriteString(formatIssue(issue))
	}
	for _, issue := range r.Warnings {
		out.WriteString(reportColorWarn.Sprint("  warn   "))
		out.WriteString(formatIssue(issue))
	}
	return out.String()
}

func formatIssue(issue ValidationIssue) string {
	var loc strings.Builder
	loc.WriteString(issue.File)
	if issue.Line > 0 {
		fmt.Fprintf(&loc, ":%d", issue.Line)
		if issue.Column > 0 {
			fmt.Fprintf(&loc, ":%d", issue.Column)
		}
	}
	if issue.Rule != "" {
		return fmt.Sprintf("[%s] %s: %s\n", issue.Rule, loc.String(), issue.Message)
	}
	return fmt.Sprintf("%s: %s\n", loc.String(), issue.Message)
}
