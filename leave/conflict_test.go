package leave_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/warp/leavedesk/leave"
)

func teamRequest(id, employeeID string, start, end leave.Date, status leave.RequestStatus) leave.LeaveRequest {
	return leave.LeaveRequest{
		ID:         id,
		EmployeeID: employeeID,
		StartDate:  start,
		EndDate:    end,
		Status:     status,
	}
}

func TestAnalyze_NoOverlaps(t *testing.T) {
	// GIVEN: A team of 4 with one request well outside the candidate range
	start := leave.NewDate(2026, time.June, 1)
	end := leave.NewDate(2026, time.June, 5)
	team := []leave.LeaveRequest{
		teamRequest("r1", "emp-2",
			leave.NewDate(2026, time.July, 1), leave.NewDate(2026, time.July, 3),
			leave.StatusApproved),
	}

	// WHEN: Analyzing
	result := leave.Analyze(start, end, team, 4, leave.DefaultThresholds())

	// THEN: No conflict, low severity, 0% coverage
	assert.False(t, result.HasConflict)
	assert.Equal(t, leave.SeverityLow, result.Severity)
	assert.Equal(t, 0, result.TeamCoveragePercent)
	assert.Empty(t, result.OverlappingRequests)
}

func TestAnalyze_OneOverlapOfFour_Medium(t *testing.T) {
	// GIVEN: 1 of 4 team members away during the range
	start := leave.NewDate(2026, time.June, 1)
	end := leave.NewDate(2026, time.June, 5)
	team := []leave.LeaveRequest{
		teamRequest("r1", "emp-2",
			leave.NewDate(2026, time.June, 3), leave.NewDate(2026, time.June, 9),
			leave.StatusApproved),
	}

	// WHEN: Analyzing with default thresholds (25/50)
	result := leave.Analyze(start, end, team, 4, leave.DefaultThresholds())

	// THEN: 25% coverage hits the warning threshold
	assert.True(t, result.HasConflict)
	assert.Equal(t, 25, result.TeamCoveragePercent)
	assert.Equal(t, leave.SeverityMedium, result.Severity)
	assert.Len(t, result.OverlappingRequests, 1)
}

func TestAnalyze_TwoOverlapsOfFour_High(t *testing.T) {
	// GIVEN: 2 of 4 team members away
	start := leave.NewDate(2026, time.June, 1)
	end := leave.NewDate(2026, time.June, 5)
	team := []leave.LeaveRequest{
		teamRequest("r1", "emp-2", start, end, leave.StatusApproved),
		teamRequest("r2", "emp-3", start, end, leave.StatusPending),
	}

	// WHEN: Analyzing
	result := leave.Analyze(start, end, team, 4, leave.DefaultThresholds())

	// THEN: 50% coverage hits the critical threshold
	assert.Equal(t, 50, result.TeamCoveragePercent)
	assert.Equal(t, leave.SeverityHigh, result.Severity)
	assert.NotEmpty(t, result.Suggestions)
}

func TestAnalyze_RejectedAndCancelledIgnored(t *testing.T) {
	// GIVEN: Overlapping requests that were rejected or cancelled
	start := leave.NewDate(2026, time.June, 1)
	end := leave.NewDate(2026, time.June, 5)
	team := []leave.LeaveRequest{
		teamRequest("r1", "emp-2", start, end, leave.StatusRejected),
		teamRequest("r2", "emp-3", start, end, leave.StatusCancelled),
	}

	// WHEN: Analyzing
	result := leave.Analyze(start, end, team, 4, leave.DefaultThresholds())

	// THEN: Neither counts toward coverage
	assert.False(t, result.HasConflict)
	assert.Equal(t, 0, result.TeamCoveragePercent)
}

func TestAnalyze_InclusiveBoundaries(t *testing.T) {
	// GIVEN: A request ending exactly on the candidate start day
	start := leave.NewDate(2026, time.June, 8)
	end := leave.NewDate(2026, time.June, 12)
	team := []leave.LeaveRequest{
		teamRequest("r1", "emp-2",
			leave.NewDate(2026, time.June, 4), leave.NewDate(2026, time.June, 8),
			leave.StatusApproved),
	}

	// WHEN: Analyzing
	result := leave.Analyze(start, end, team, 10, leave.DefaultThresholds())

	// THEN: Touching ranges overlap (inclusive on both ends)
	assert.True(t, result.HasConflict)
	assert.Len(t, result.OverlappingRequests, 1)
}

func TestAnalyze_ZeroTeamSize(t *testing.T) {
	// GIVEN: An overlap but an unknown team size
	start := leave.NewDate(2026, time.June, 1)
	end := leave.NewDate(2026, time.June, 5)
	team := []leave.LeaveRequest{
		teamRequest("r1", "emp-2", start, end, leave.StatusApproved),
	}

	// WHEN: Analyzing with teamSize 0
	result := leave.Analyze(start, end, team, 0, leave.DefaultThresholds())

	// THEN: Coverage stays 0 (no division), overlap still reported
	assert.True(t, result.HasConflict)
	assert.Equal(t, 0, result.TeamCoveragePercent)
	assert.Equal(t, leave.SeverityLow, result.Severity)
}

func TestAnalyze_Deterministic(t *testing.T) {
	// GIVEN: A fixed input
	start := leave.NewDate(2026, time.June, 1)
	end := leave.NewDate(2026, time.June, 5)
	team := []leave.LeaveRequest{
		teamRequest("r1", "emp-2", start, end, leave.StatusApproved),
		teamRequest("r2", "emp-3", start, end, leave.StatusPending),
	}

	// WHEN: Analyzing twice
	first := leave.Analyze(start, end, team, 5, leave.DefaultThresholds())
	second := leave.Analyze(start, end, team, 5, leave.DefaultThresholds())

	// THEN: Identical verdicts, same ordering
	assert.Equal(t, first, second)
}
