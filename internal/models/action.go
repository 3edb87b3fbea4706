package models

import (
	"time"

	"github.com/sirupsen/logrus"
)

// ActionType represents the type of reconciliation action.
type ActionType string

const (
	ActionReinvite        ActionType = "reinvite"
	ActionInvite          ActionType = "invite"
	ActionUpdateRoles     ActionType = "update_roles"
	ActionCreateBetaGroup ActionType = "create_beta_group"
	ActionAddBetaTester   ActionType = "add_beta_tester"
	ActionSkip            ActionType = "skip"
)

// SyncAction represents a single reconciliation decision and its outcome.
type SyncAction struct {
	Type       ActionType   `json:"type"`
	Email      string       `json:"email,omitempty"`
	BundleID   string       `json:"bundle_id,omitempty"`
	Roles      []UserRole   `json:"roles,omitempty"`
	Reason     string       `json:"reason"`
	Executed   bool         `json:"executed"`
	Outcome    WriteOutcome `json:"outcome,omitempty"`
	StatusCode int          `json:"status_code,omitempty"`
	Error      *string      `json:"error,omitempty"`
	Timestamp  *time.Time   `json:"timestamp,omitempty"`
}

// IsWrite reports whether the action issues a write request.
func (a *SyncAction) IsWrite() bool {
	return a.Type != ActionSkip
}

// SoftFailed reports whether the write was rejected by the platform.
func (a *SyncAction) SoftFailed() bool {
	return a.Executed && a.Outcome == WriteSoftFailed
}

// Record stores the outcome of the executed write on the action.
func (a *SyncAction) Record(result WriteResult) {
	now := time.Now()
	a.Executed = true
	a.Outcome = result.Outcome
	a.StatusCode = result.StatusCode
	a.Timestamp = &now
	if !result.OK() {
		msg := result.Body
		a.Error = &msg
	}
}

// LogFields returns structured logging fields for this action.
func (a *SyncAction) LogFields() logrus.Fields {
	fields := logrus.Fields{
		"action": a.Type,
		"reason": a.Reason,
	}
	if a.Email != "" {
		fields["email"] = a.Email
	}
	if a.BundleID != "" {
		fields["bundle_id"] = a.BundleID
	}
	if len(a.Roles) > 0 {
		fields["roles"] = a.Roles
	}
	if a.Outcome != "" {
		fields["outcome"] = a.Outcome
		fields["status_code"] = a.StatusCode
	}
	if a.Error != nil {
		fields["error"] = *a.Error
	}
	return fields
}
