/*
conflict.go - Team overlap / conflict analyzer

PURPOSE:
  Given a candidate date range and the team's existing approved/pending
  requests, compute how many teammates are absent during the range, what
  fraction of the team that is, and classify the severity.

DETERMINISM:
  Analyze is pure: same inputs, same output. Severity depends only on
  team coverage percent against the configured thresholds.

OVERLAP RULE:
  Inclusive interval intersection:
    candidateStart <= existing.End AND candidateEnd >= existing.Start
  Half-day flags do not narrow the interval; a half-day absence still
  counts as a full-day overlap for coverage purposes.

SEVERITY TIERS (defaults warning=25, critical=50):
  coverage <  warning   -> low
  coverage >= warning   -> medium
  coverage >= critical  -> high

Message and Suggestions are presentation text derived from the tier;
callers should branch on Severity/coverage/overlap count, not strings.
*/
package leave

import (
	"fmt"
	"math"
)

// =============================================================================
// THRESHOLDS
// =============================================================================

// Thresholds configure the severity tiers as team-coverage percentages.
type Thresholds struct {
	WarningPercent  int
	CriticalPercent int
}

// DefaultThresholds returns the stock 25/50 configuration.
func DefaultThresholds() Thresholds {
	return Thresholds{WarningPercent: 25, CriticalPercent: 50}
}

// =============================================================================
// ANALYZER
// =============================================================================

// Analyze inspects a candidate range against the team's requests.
// teamRequests should already exclude the requester; requests that are
// not approved or pending are ignored regardless.
func Analyze(candidateStart, candidateEnd Date, teamRequests []LeaveRequest, teamSize int, th Thresholds) ConflictAnalysis {
	var overlapping []LeaveRequest
	for _, r := range teamRequests {
		if !r.CountsForCoverage() {
			continue
		}
		if r.Overlaps(candidateStart, candidateEnd) {
			overlapping = append(overlapping, r)
		}
	}

	coverage := 0
	if teamSize > 0 {
		coverage = int(math.Round(100 * float64(len(overlapping)) / float64(teamSize)))
	}

	severity := SeverityLow
	switch {
	case coverage >= th.CriticalPercent:
		severity = SeverityHigh
	case coverage >= th.WarningPercent:
		severity = SeverityMedium
	}

	analysis := ConflictAnalysis{
		HasConflict:         len(overlapping) > 0,
		Severity:            severity,
		OverlappingRequests: overlapping,
		TeamCoveragePercent: coverage,
	}
	analysis.Message, analysis.Suggestions = describe(severity, len(overlapping), coverage)
	return analysis
}

// describe turns a severity tier into presentation text.
func describe(severity Severity, overlaps, coverage int) (string, []string) {
	switch severity {
	case SeverityHigh:
		return fmt.Sprintf("%d team members are away during this period (%d%% of the team)", overlaps, coverage),
			[]string{
				"Consider shifting the request to an adjacent week",
				"Coordinate with your manager before submitting",
			}
	case SeverityMedium:
		return fmt.Sprintf("%d team members already have leave during this period", overlaps), nil
	default:
		if overlaps > 0 {
			return fmt.Sprintf("%d team member(s) overlap with this period", overlaps), nil
		}
		return "No team conflicts for this period", nil
	}
}
