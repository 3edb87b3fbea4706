package models

// InternalTestersGroupName is the name given to a created internal beta group.
const InternalTestersGroupName = "Internal Testers"

// RelationshipData identifies a related resource.
type RelationshipData struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// ToOneRelationship links a single resource.
type ToOneRelationship struct {
	Data RelationshipData `json:"data"`
}

// ToManyRelationship links a list of resources.
type ToManyRelationship struct {
	Data []RelationshipData `json:"data"`
}

// UserInvitationCreateRequest is the body of POST /v1/userInvitations.
type UserInvitationCreateRequest struct {
	Data UserInvitationCreateData `json:"data"`
}

// UserInvitationCreateData is the resource object of an invitation request.
type UserInvitationCreateData struct {
	Type       string                         `json:"type"`
	Attributes UserInvitationCreateAttributes `json:"attributes"`
}

// UserInvitationCreateAttributes are the invitation attributes.
// ProvisioningAllowed is always serialized, as null when unset.
type UserInvitationCreateAttributes struct {
	Email               string     `json:"email"`
	FirstName           string     `json:"firstName"`
	LastName            string     `json:"lastName"`
	Roles               []UserRole `json:"roles"`
	AllAppsVisible      bool       `json:"allAppsVisible"`
	ProvisioningAllowed *bool      `json:"provisioningAllowed"`
}

// NewUserInvitationCreateRequest builds an invitation payload.
func NewUserInvitationCreateRequest(email, firstName, lastName string, roles []UserRole, allAppsVisible bool) UserInvitationCreateRequest {
	return UserInvitationCreateRequest{
		Data: UserInvitationCreateData{
			Type: TypeUserInvitations,
			Attributes: UserInvitationCreateAttributes{
				Email:          email,
				FirstName:      firstName,
				LastName:       lastName,
				Roles:          append([]UserRole(nil), roles...),
				AllAppsVisible: allAppsVisible,
			},
		},
	}
}

// ReinvitationRequest rebuilds an invitation from an expired one, keeping its
// identity attributes. allAppsVisible defaults to true when it was unset.
func ReinvitationRequest(inv PendingInvitation) UserInvitationCreateRequest {
	allApps := true
	if inv.Attributes.AllAppsVisible != nil {
		allApps = *inv.Attributes.AllAppsVisible
	}
	return NewUserInvitationCreateRequest(
		inv.Attributes.Email,
		inv.Attributes.FirstName,
		inv.Attributes.LastName,
		inv.Attributes.Roles,
		allApps,
	)
}

// BetaGroupCreateRequest is the body of POST /v1/betaGroups.
type BetaGroupCreateRequest struct {
	Data BetaGroupCreateData `json:"data"`
}

// BetaGroupCreateData is the resource object of a beta group request.
type BetaGroupCreateData struct {
	Type          string                       `json:"type"`
	Attributes    BetaGroupCreateAttributes    `json:"attributes"`
	Relationships BetaGroupCreateRelationships `json:"relationships"`
}

// BetaGroupCreateAttributes are the beta group attributes.
type BetaGroupCreateAttributes struct {
	Name                 string `json:"name"`
	IsInternalGroup      bool   `json:"isInternalGroup"`
	HasAccessToAllBuilds *bool  `json:"hasAccessToAllBuilds"`
	FeedbackEnabled      *bool  `json:"feedbackEnabled"`
}

// BetaGroupCreateRelationships links the group to its app.
type BetaGroupCreateRelationships struct {
	App ToOneRelationship `json:"app"`
}

// NewInternalBetaGroupRequest builds the payload creating the internal testers group of an app.
func NewInternalBetaGroupRequest(appID string) BetaGroupCreateRequest {
	enabled := true
	return BetaGroupCreateRequest{
		Data: BetaGroupCreateData{
			Type: TypeBetaGroups,
			Attributes: BetaGroupCreateAttributes{
				Name:                 InternalTestersGroupName,
				IsInternalGroup:      true,
				HasAccessToAllBuilds: &enabled,
				FeedbackEnabled:      &enabled,
			},
			Relationships: BetaGroupCreateRelationships{
				App: ToOneRelationship{Data: RelationshipData{ID: appID, Type: TypeApps}},
			},
		},
	}
}

// BetaTesterCreateRequest is the body of POST /v1/betaTesters.
type BetaTesterCreateRequest struct {
	Data BetaTesterCreateData `json:"data"`
}

// BetaTesterCreateData is the resource object of a beta tester request.
type BetaTesterCreateData struct {
	Type          string                        `json:"type"`
	Attributes    BetaTesterCreateAttributes    `json:"attributes"`
	Relationships BetaTesterCreateRelationships `json:"relationships"`
}

// BetaTesterCreateAttributes are the beta tester attributes.
type BetaTesterCreateAttributes struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// BetaTesterCreateRelationships links the tester to its groups.
type BetaTesterCreateRelationships struct {
	BetaGroups ToManyRelationship `json:"betaGroups"`
}

// NewBetaTesterCreateRequest enrolls a roster user into a single beta group.
func NewBetaTesterCreateRequest(user RosterUser, groupID string) BetaTesterCreateRequest {
	return BetaTesterCreateRequest{
		Data: BetaTesterCreateData{
			Type: TypeBetaTesters,
			Attributes: BetaTesterCreateAttributes{
				FirstName: user.Attributes.FirstName,
				LastName:  user.Attributes.LastName,
				Email:     user.Attributes.Username,
			},
			Relationships: BetaTesterCreateRelationships{
				BetaGroups: ToManyRelationship{Data: []RelationshipData{{ID: groupID, Type: TypeBetaGroups}}},
			},
		},
	}
}

// UserUpdateRequest is the body of PATCH /v1/users/{id}.
type UserUpdateRequest struct {
	Data UserUpdateData `json:"data"`
}

// UserUpdateData is the resource object of a user update.
type UserUpdateData struct {
	Type       string               `json:"type"`
	ID         string               `json:"id"`
	Attributes UserUpdateAttributes `json:"attributes"`
}

// UserUpdateAttributes holds the partial attributes to change.
type UserUpdateAttributes struct {
	Roles               []UserRole `json:"roles,omitempty"`
	AllAppsVisible      *bool      `json:"allAppsVisible,omitempty"`
	ProvisioningAllowed *bool      `json:"provisioningAllowed,omitempty"`
}

// NewUserRolesUpdateRequest builds a patch replacing the user's roles.
func NewUserRolesUpdateRequest(userID string, roles []UserRole) UserUpdateRequest {
	return UserUpdateRequest{
		Data: UserUpdateData{
			Type:       TypeUsers,
			ID:         userID,
			Attributes: UserUpdateAttributes{Roles: append([]UserRole(nil), roles...)},
		},
	}
}
