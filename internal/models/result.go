package models

import (
	"fmt"
	"time"
)

// CycleResult contains the outcome of one reconciliation cycle.
type CycleResult struct {
	Cycle      int          `json:"cycle"`
	DryRun     bool         `json:"dry_run"`
	StartTime  time.Time    `json:"start_time"`
	EndTime    time.Time    `json:"end_time"`
	DurationMs int64        `json:"duration_ms"`
	Actions    []SyncAction `json:"actions"`
	Summary    CycleSummary `json:"summary"`
	Errors     []string     `json:"errors,omitempty"`
}

// CycleSummary provides aggregate statistics for a cycle.
type CycleSummary struct {
	Candidates         int `json:"candidates"`
	RosterUsers        int `json:"roster_users"`
	PendingInvitations int `json:"pending_invitations"`
	ManagedApps        int `json:"managed_apps"`
	ActionsPlanned     int `json:"actions_planned"`
	ActionsExecuted    int `json:"actions_executed"`
	SoftFailures       int `json:"soft_failures"`
	Reinvited          int `json:"reinvited"`
	Invited            int `json:"invited"`
	RolesUpdated       int `json:"roles_updated"`
	GroupsCreated      int `json:"groups_created"`
	TestersAdded       int `json:"testers_added"`
	Skipped            int `json:"skipped"`
}

// IsSuccess returns true if no errors or soft failures occurred.
func (r *CycleResult) IsSuccess() bool {
	return len(r.Errors) == 0 && r.Summary.SoftFailures == 0
}

// Writes returns the actions that issue write requests.
func (r *CycleResult) Writes() []SyncAction {
	var writes []SyncAction
	for _, a := range r.Actions {
		if a.IsWrite() {
			writes = append(writes, a)
		}
	}
	return writes
}

// String returns a human-readable representation of the cycle summary.
func (s CycleSummary) String() string {
	return fmt.Sprintf(
		"cycle completed — Candidates: %d, Roster: %d users, Pending invites: %d, Apps: %d, "+
			"Actions: %d planned / %d executed / %d soft-failed, "+
			"Reinvited: %d, Invited: %d, Roles updated: %d, Groups created: %d, Testers added: %d, Skipped: %d",
		s.Candidates, s.RosterUsers, s.PendingInvitations, s.ManagedApps,
		s.ActionsPlanned, s.ActionsExecuted, s.SoftFailures,
		s.Reinvited, s.Invited, s.RolesUpdated, s.GroupsCreated, s.TestersAdded, s.Skipped,
	)
}
