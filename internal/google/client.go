package google

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2/google"
	forms "google.golang.org/api/forms/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/daniloc96/appstore-testflight-sync/internal/models"
)

// Questions maps candidate fields to form question IDs.
type Questions struct {
	FirstName string
	LastName  string
	Email     string
}

type responseLister interface {
	ListResponses(ctx context.Context, formID string, pageToken string) ([]*forms.FormResponse, string, error)
}

// Client reads candidates from Google Forms responses.
type Client struct {
	formID    string
	questions Questions
	lister    responseLister
}

// NewClient creates a Google Forms client from service account credentials.
// subject is the user impersonated through domain-wide delegation, if any.
func NewClient(ctx context.Context, credentialsJSON []byte, subject, formID string, questions Questions) (*Client, error) {
	if len(credentialsJSON) == 0 {
		return nil, fmt.Errorf("credentials JSON is required")
	}
	if formID == "" {
		return nil, fmt.Errorf("form id is required")
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, forms.FormsResponsesReadonlyScope)
	if err != nil {
		return nil, err
	}
	config.Subject = subject

	svc, err := forms.NewService(ctx, option.WithTokenSource(config.TokenSource(ctx)))
	if err != nil {
		return nil, err
	}

	return &Client{formID: formID, questions: questions, lister: &formsService{svc: svc}}, nil
}

// ListCandidates returns one candidate per form response carrying an email.
func (c *Client) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	var candidates []models.Candidate
	skipped := 0
	pageToken := ""
	for {
		var (
			items     []*forms.FormResponse
			nextToken string
			err       error
		)
		err = retryOnGoogleError(ctx, func() error {
			items, nextToken, err = c.lister.ListResponses(ctx, c.formID, pageToken)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("listing responses of form %s: %w", c.formID, err)
		}
		for _, response := range items {
			if response == nil {
				continue
			}
			candidate := c.extractCandidate(response)
			if candidate.Email == "" {
				skipped++
				logrus.WithField("response_id", response.ResponseId).Warn("form response has no email, skipping")
				continue
			}
			candidates = append(candidates, candidate)
		}
		if nextToken == "" {
			break
		}
		pageToken = nextToken
	}

	logrus.WithFields(logrus.Fields{
		"form_id":    c.formID,
		"candidates": len(candidates),
		"skipped":    skipped,
	}).Debug("loaded form responses")
	return candidates, nil
}

func (c *Client) extractCandidate(response *forms.FormResponse) models.Candidate {
	email := textAnswer(response.Answers, c.questions.Email)
	if c.questions.Email == "" {
		email = response.RespondentEmail
	}
	return models.Candidate{
		FirstName: textAnswer(response.Answers, c.questions.FirstName),
		LastName:  textAnswer(response.Answers, c.questions.LastName),
		Email:     strings.TrimSpace(email),
	}
}

// textAnswer returns the first text answer to a question, or "".
func textAnswer(answers map[string]forms.Answer, questionID string) string {
	if questionID == "" {
		return ""
	}
	answer, ok := answers[questionID]
	if !ok || answer.TextAnswers == nil {
		return ""
	}
	for _, text := range answer.TextAnswers.Answers {
		if text != nil && text.Value != "" {
			return strings.TrimSpace(text.Value)
		}
	}
	return ""
}

func retryOnGoogleError(ctx context.Context, fn func() error) error {
	const maxRetries = 3
	backoff := 200 * time.Millisecond
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !isRetryableGoogleError(err) || attempt == maxRetries {
			return err
		}
		if backoff > 2*time.Second {
			backoff = 2 * time.Second
		}
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
	return nil
}

func isRetryableGoogleError(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == 429 || apiErr.Code == 503
}

type formsService struct {
	svc *forms.Service
}

func (f *formsService) ListResponses(ctx context.Context, formID string, pageToken string) ([]*forms.FormResponse, string, error) {
	call := f.svc.Forms.Responses.List(formID)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, "", err
	}
	return resp.Responses, resp.NextPageToken, nil
}
