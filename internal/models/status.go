package models

// RosterStatus is a read-only snapshot of the roster and TestFlight state.
type RosterStatus struct {
	RosterUsers        int         `json:"roster_users"`
	PendingInvitations int         `json:"pending_invitations"`
	ExpiredInvitations int         `json:"expired_invitations"`
	BetaTesters        int         `json:"beta_testers"`
	Apps               []AppStatus `json:"apps"`
}

// AppStatus describes a managed app and its internal testers group.
type AppStatus struct {
	BundleID      string `json:"bundle_id"`
	Name          string `json:"name"`
	InternalGroup string `json:"internal_group,omitempty"`
	Testers       int    `json:"testers"`
}
