package appstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/daniloc96/appstore-testflight-sync/internal/interfaces"
	"github.com/daniloc96/appstore-testflight-sync/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is the public App Store Connect API endpoint.
	DefaultBaseURL = "https://api.appstoreconnect.apple.com"
	// DefaultThrottle is the delay applied before every operation.
	DefaultThrottle = time.Second
	// DefaultMaxMalformedRetries bounds how many times a malformed page is requested.
	DefaultMaxMalformedRetries = 5
	// DefaultMalformedBackoff is the first wait between malformed page attempts.
	DefaultMalformedBackoff = 500 * time.Millisecond
)

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a Client.
type Options struct {
	BaseURL             string
	HTTPClient          Doer
	Throttle            time.Duration
	MaxMalformedRetries int
	MalformedBackoff    time.Duration
}

// Client implements App Store Connect roster operations. It holds the
// current bearer token and the long-lived HTTP transport.
type Client struct {
	baseURL          string
	httpClient       Doer
	credentials      interfaces.CredentialProvider
	token            *oauth2.Token
	throttleDelay    time.Duration
	maxMalformed     int
	malformedBackoff time.Duration
	sleep            func(ctx context.Context, d time.Duration) error
}

// NewClient creates an App Store Connect client.
func NewClient(credentials interfaces.CredentialProvider, opts Options) (*Client, error) {
	if credentials == nil {
		return nil, fmt.Errorf("credential provider is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	maxMalformed := opts.MaxMalformedRetries
	if maxMalformed <= 0 {
		maxMalformed = DefaultMaxMalformedRetries
	}
	return &Client{
		baseURL:          baseURL,
		httpClient:       httpClient,
		credentials:      credentials,
		throttleDelay:    opts.Throttle,
		maxMalformed:     maxMalformed,
		malformedBackoff: opts.MalformedBackoff,
		sleep:            sleepContext,
	}, nil
}

// RefreshCredentials replaces the bearer token attached to every request.
func (c *Client) RefreshCredentials(ctx context.Context) error {
	token, err := c.credentials.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refreshing credentials: %w", err)
	}
	c.token = token
	logrus.WithField("expires_at", token.Expiry.Format(time.RFC3339)).Debug("refreshed App Store Connect token")
	return nil
}

// ListUsers lists all team members.
func (c *Client) ListUsers(ctx context.Context) ([]models.RosterUser, error) {
	return fetchAll[models.RosterUser](ctx, c, c.endpoint("v1", "users"))
}

// ListApps lists all apps.
func (c *Client) ListApps(ctx context.Context) ([]models.App, error) {
	return fetchAll[models.App](ctx, c, c.endpoint("v1", "apps"))
}

// ListBetaGroups lists the beta groups of an app.
func (c *Client) ListBetaGroups(ctx context.Context, app models.App) ([]models.BetaGroup, error) {
	if app.ID == "" {
		return nil, fmt.Errorf("app id is required")
	}
	return fetchAll[models.BetaGroup](ctx, c, c.endpoint("v1", "apps", app.ID, "betaGroups"))
}

// ListBetaTesters lists every beta tester of the team.
func (c *Client) ListBetaTesters(ctx context.Context) ([]models.BetaTester, error) {
	return fetchAll[models.BetaTester](ctx, c, c.endpoint("v1", "betaTesters"))
}

// ListGroupBetaTesters lists the testers in a beta group.
func (c *Client) ListGroupBetaTesters(ctx context.Context, group models.BetaGroup) ([]models.BetaTester, error) {
	if group.ID == "" {
		return nil, fmt.Errorf("beta group id is required")
	}
	return fetchAll[models.BetaTester](ctx, c, c.endpoint("v1", "betaGroups", group.ID, "betaTesters"))
}

// ListPendingInvitations lists outstanding team invitations.
func (c *Client) ListPendingInvitations(ctx context.Context) ([]models.PendingInvitation, error) {
	return fetchAll[models.PendingInvitation](ctx, c, c.endpoint("v1", "userInvitations"))
}

// CreateBetaGroup creates a beta group.
func (c *Client) CreateBetaGroup(ctx context.Context, req models.BetaGroupCreateRequest) (models.WriteResult, error) {
	return c.write(ctx, http.MethodPost, c.endpoint("v1", "betaGroups"), req, http.StatusCreated, logrus.Fields{
		"operation": "create_beta_group",
		"group":     req.Data.Attributes.Name,
		"app_id":    req.Data.Relationships.App.Data.ID,
	})
}

// CreateBetaTester creates a beta tester linked to the groups in the request.
func (c *Client) CreateBetaTester(ctx context.Context, req models.BetaTesterCreateRequest) (models.WriteResult, error) {
	groups := make([]string, 0, len(req.Data.Relationships.BetaGroups.Data))
	for _, g := range req.Data.Relationships.BetaGroups.Data {
		groups = append(groups, g.ID)
	}
	return c.write(ctx, http.MethodPost, c.endpoint("v1", "betaTesters"), req, http.StatusCreated, logrus.Fields{
		"operation": "create_beta_tester",
		"email":     req.Data.Attributes.Email,
		"groups":    strings.Join(groups, ","),
	})
}

// CreateInvitation invites a user to the team.
func (c *Client) CreateInvitation(ctx context.Context, req models.UserInvitationCreateRequest) (models.WriteResult, error) {
	return c.write(ctx, http.MethodPost, c.endpoint("v1", "userInvitations"), req, http.StatusCreated, logrus.Fields{
		"operation": "create_invitation",
		"email":     req.Data.Attributes.Email,
	})
}

// PatchUser updates a subset of a team member's attributes.
func (c *Client) PatchUser(ctx context.Context, userID string, req models.UserUpdateRequest) (models.WriteResult, error) {
	if userID == "" {
		return models.WriteResult{}, fmt.Errorf("user id is required")
	}
	return c.write(ctx, http.MethodPatch, c.endpoint("v1", "users", userID), req, http.StatusOK, logrus.Fields{
		"operation": "patch_user",
		"user_id":   userID,
	})
}

func (c *Client) endpoint(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return c.baseURL + "/" + strings.Join(escaped, "/")
}

// write submits a single payload. Any status other than expected is a soft
// failure: logged with the body and reported through the result.
func (c *Client) write(ctx context.Context, method, target string, payload any, expected int, fields logrus.Fields) (models.WriteResult, error) {
	if err := c.throttle(ctx); err != nil {
		return models.WriteResult{}, err
	}
	status, body, err := c.do(ctx, method, target, payload)
	if err != nil {
		return models.WriteResult{}, err
	}
	fields["status_code"] = status
	if status != expected {
		fields["body"] = string(body)
		logrus.WithFields(fields).Warn("App Store Connect rejected write request")
		return models.SoftFailure(status, string(body)), nil
	}
	logrus.WithFields(fields).Debug("App Store Connect write request succeeded")
	return models.Succeeded(status), nil
}

func (c *Client) do(ctx context.Context, method, target string, payload any) (int, []byte, error) {
	if c.token == nil {
		return 0, nil, ErrNoCredentials
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	c.token.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response from %s: %w", target, err)
	}
	return resp.StatusCode, data, nil
}

// throttle blocks for the fixed per-operation delay.
func (c *Client) throttle(ctx context.Context) error {
	if c.throttleDelay <= 0 {
		return nil
	}
	return c.sleep(ctx, c.throttleDelay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
