package models

import (
	"errors"
	"fmt"
)

// Resource types used by the App Store Connect API.
const (
	TypeUsers           = "users"
	TypeUserInvitations = "userInvitations"
	TypeApps            = "apps"
	TypeBetaGroups      = "betaGroups"
	TypeBetaTesters     = "betaTesters"
)

// UserRole is an App Store Connect team role.
type UserRole string

const (
	RoleAdmin           UserRole = "ADMIN"
	RoleFinance         UserRole = "FINANCE"
	RoleAccountHolder   UserRole = "ACCOUNT_HOLDER"
	RoleSales           UserRole = "SALES"
	RoleMarketing       UserRole = "MARKETING"
	RoleAppManager      UserRole = "APP_MANAGER"
	RoleDeveloper       UserRole = "DEVELOPER"
	RoleAccessToReports UserRole = "ACCESS_TO_REPORTS"
	RoleCustomerSupport UserRole = "CUSTOMER_SUPPORT"
)

// Resource is implemented by every item a list endpoint can return.
// Validate is the response schema check applied to each page item.
type Resource interface {
	Validate() error
}

// ResourceLinks holds the self link of a single resource.
type ResourceLinks struct {
	Self string `json:"self"`
}

// PagedDocumentLinks holds the links of a paged list document.
type PagedDocumentLinks struct {
	Self  string  `json:"self"`
	First *string `json:"first,omitempty"`
	Next  *string `json:"next,omitempty"`
}

// NextURL returns the next page link or an empty string on the last page.
func (l PagedDocumentLinks) NextURL() string {
	if l.Next == nil {
		return ""
	}
	return *l.Next
}

// PagingInformation is the optional meta block of a list document.
type PagingInformation struct {
	Paging struct {
		Total int `json:"total"`
		Limit int `json:"limit"`
	} `json:"paging"`
}

// Page is one page of a typed collection.
type Page[T Resource] struct {
	Data  []T                `json:"data"`
	Links PagedDocumentLinks `json:"links"`
	Meta  *PagingInformation `json:"meta,omitempty"`
}

// Validate checks the document envelope and every item in it.
func (p *Page[T]) Validate() error {
	if p.Data == nil {
		return errors.New("data is required")
	}
	if p.Links.Self == "" {
		return errors.New("links.self is required")
	}
	for i, item := range p.Data {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("data[%d]: %w", i, err)
		}
	}
	return nil
}

func requireFields(kv ...string) error {
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			return fmt.Errorf("%s is required", kv[i])
		}
	}
	return nil
}

// RosterUser is a member of the App Store Connect team.
type RosterUser struct {
	ID         string               `json:"id"`
	Type       string               `json:"type"`
	Attributes RosterUserAttributes `json:"attributes"`
	Links      ResourceLinks        `json:"links"`
}

// RosterUserAttributes are the attributes of a team member.
type RosterUserAttributes struct {
	Username            string     `json:"username"`
	FirstName           string     `json:"firstName"`
	LastName            string     `json:"lastName"`
	Roles               []UserRole `json:"roles"`
	AllAppsVisible      *bool      `json:"allAppsVisible,omitempty"`
	ProvisioningAllowed *bool      `json:"provisioningAllowed,omitempty"`
}

// Validate implements Resource.
func (u RosterUser) Validate() error {
	return requireFields("id", u.ID, "type", u.Type, "attributes.username", u.Attributes.Username)
}

// HasRole reports whether the user holds the given role.
func (u RosterUser) HasRole(role UserRole) bool {
	for _, r := range u.Attributes.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// PendingInvitation is an outstanding team invitation.
type PendingInvitation struct {
	ID         string                      `json:"id"`
	Type       string                      `json:"type"`
	Attributes PendingInvitationAttributes `json:"attributes"`
	Links      ResourceLinks               `json:"links"`
}

// PendingInvitationAttributes are the attributes of a team invitation.
type PendingInvitationAttributes struct {
	Email               string     `json:"email"`
	FirstName           string     `json:"firstName"`
	LastName            string     `json:"lastName"`
	Roles               []UserRole `json:"roles"`
	AllAppsVisible      *bool      `json:"allAppsVisible,omitempty"`
	ProvisioningAllowed *bool      `json:"provisioningAllowed,omitempty"`
	ExpirationDate      string     `json:"expirationDate"`
}

// Validate implements Resource.
func (i PendingInvitation) Validate() error {
	return requireFields("id", i.ID, "type", i.Type, "attributes.email", i.Attributes.Email)
}

// App is an application registered in App Store Connect.
type App struct {
	ID         string        `json:"id"`
	Type       string        `json:"type"`
	Attributes AppAttributes `json:"attributes"`
	Links      ResourceLinks `json:"links"`
}

// AppAttributes are the attributes of an app.
type AppAttributes struct {
	BundleID string `json:"bundleId"`
	Name     string `json:"name"`
	SKU      string `json:"sku"`
}

// Validate implements Resource.
func (a App) Validate() error {
	return requireFields("id", a.ID, "type", a.Type, "attributes.bundleId", a.Attributes.BundleID)
}

// BetaGroup is a TestFlight tester group of an app.
type BetaGroup struct {
	ID         string              `json:"id"`
	Type       string              `json:"type"`
	Attributes BetaGroupAttributes `json:"attributes"`
	Links      ResourceLinks       `json:"links"`
}

// BetaGroupAttributes are the attributes of a beta group.
type BetaGroupAttributes struct {
	Name                 string `json:"name"`
	IsInternalGroup      *bool  `json:"isInternalGroup,omitempty"`
	HasAccessToAllBuilds *bool  `json:"hasAccessToAllBuilds,omitempty"`
}

// Validate implements Resource.
func (g BetaGroup) Validate() error {
	return requireFields("id", g.ID, "type", g.Type)
}

// IsInternal reports whether the group is flagged as the internal testers group.
func (g BetaGroup) IsInternal() bool {
	return g.Attributes.IsInternalGroup != nil && *g.Attributes.IsInternalGroup
}

// BetaTester is a TestFlight tester.
type BetaTester struct {
	ID         string               `json:"id"`
	Type       string               `json:"type"`
	Attributes BetaTesterAttributes `json:"attributes"`
	Links      ResourceLinks        `json:"links"`
}

// BetaTesterAttributes are the attributes of a beta tester.
type BetaTesterAttributes struct {
	FirstName  string  `json:"firstName"`
	LastName   *string `json:"lastName,omitempty"`
	Email      *string `json:"email,omitempty"`
	InviteType string  `json:"inviteType"`
}

// Validate implements Resource.
func (t BetaTester) Validate() error {
	return requireFields("id", t.ID, "type", t.Type)
}

// EmailAddress returns the tester email or an empty string when it is hidden.
func (t BetaTester) EmailAddress() string {
	if t.Attributes.Email == nil {
		return ""
	}
	return *t.Attributes.Email
}
