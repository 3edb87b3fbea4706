package google

import (
	"context"
	"errors"
	"testing"

	forms "google.golang.org/api/forms/v1"
	"google.golang.org/api/googleapi"
)

type fakeResponseLister struct {
	pages  []*forms.ListFormResponsesResponse
	tokens []string
	call   int
	errs   []error
}

func (f *fakeResponseLister) ListResponses(ctx context.Context, formID string, pageToken string) ([]*forms.FormResponse, string, error) {
	f.tokens = append(f.tokens, pageToken)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, "", err
		}
	}
	if f.call >= len(f.pages) {
		return nil, "", nil
	}
	page := f.pages[f.call]
	f.call++
	return page.Responses, page.NextPageToken, nil
}

func text(value string) forms.Answer {
	return forms.Answer{TextAnswers: &forms.TextAnswers{Answers: []*forms.TextAnswer{{Value: value}}}}
}

var testQuestions = Questions{FirstName: "q-first", LastName: "q-last", Email: "q-email"}

func TestListCandidatesExtractsAnswersAcrossPages(t *testing.T) {
	lister := &fakeResponseLister{
		pages: []*forms.ListFormResponsesResponse{
			{
				Responses: []*forms.FormResponse{
					{ResponseId: "r1", Answers: map[string]forms.Answer{
						"q-first": text("Ada"), "q-last": text("Lovelace"), "q-email": text(" ada@example.com "),
					}},
				},
				NextPageToken: "page-2",
			},
			{
				Responses: []*forms.FormResponse{
					{ResponseId: "r2", Answers: map[string]forms.Answer{
						"q-first": text("Alan"), "q-email": text("alan@example.com"),
					}},
				},
			},
		},
	}

	client := &Client{formID: "form", questions: testQuestions, lister: lister}
	candidates, err := client.ListCandidates(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].Email != "ada@example.com" || candidates[0].LastName != "Lovelace" {
		t.Fatalf("unexpected first candidate: %#v", candidates[0])
	}
	if candidates[1].FirstName != "Alan" || candidates[1].LastName != "" {
		t.Fatalf("unexpected second candidate: %#v", candidates[1])
	}
	if len(lister.tokens) != 2 || lister.tokens[1] != "page-2" {
		t.Fatalf("expected second call with page token, got %v", lister.tokens)
	}
}

func TestListCandidatesSkipsResponsesWithoutEmail(t *testing.T) {
	lister := &fakeResponseLister{
		pages: []*forms.ListFormResponsesResponse{{
			Responses: []*forms.FormResponse{
				{ResponseId: "r1", Answers: map[string]forms.Answer{"q-first": text("NoMail")}},
				{ResponseId: "r2", Answers: map[string]forms.Answer{"q-email": text("ok@example.com")}},
			},
		}},
	}

	client := &Client{formID: "form", questions: testQuestions, lister: lister}
	candidates, err := client.ListCandidates(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(candidates) != 1 || candidates[0].Email != "ok@example.com" {
		t.Fatalf("unexpected candidates: %#v", candidates)
	}
}

func TestListCandidatesFallsBackToRespondentEmail(t *testing.T) {
	lister := &fakeResponseLister{
		pages: []*forms.ListFormResponsesResponse{{
			Responses: []*forms.FormResponse{
				{ResponseId: "r1", RespondentEmail: "resp@example.com", Answers: map[string]forms.Answer{"q-first": text("R")}},
			},
		}},
	}

	client := &Client{formID: "form", questions: Questions{FirstName: "q-first"}, lister: lister}
	candidates, err := client.ListCandidates(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(candidates) != 1 || candidates[0].Email != "resp@example.com" {
		t.Fatalf("unexpected candidates: %#v", candidates)
	}
}

func TestListCandidatesRetriesRateLimit(t *testing.T) {
	lister := &fakeResponseLister{
		errs: []error{&googleapi.Error{Code: 429}},
		pages: []*forms.ListFormResponsesResponse{{
			Responses: []*forms.FormResponse{{Answers: map[string]forms.Answer{"q-email": text("a@example.com")}}},
		}},
	}

	client := &Client{formID: "form", questions: testQuestions, lister: lister}
	candidates, err := client.ListCandidates(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if len(lister.tokens) != 2 {
		t.Fatalf("expected a retry, got %d calls", len(lister.tokens))
	}
}

func TestListCandidatesReturnsError(t *testing.T) {
	lister := &fakeResponseLister{errs: []error{errors.New("boom")}}

	client := &Client{formID: "form", questions: testQuestions, lister: lister}
	if _, err := client.ListCandidates(context.Background()); err == nil {
		t.Fatalf("expected error, got nil")
	}
	if len(lister.tokens) != 1 {
		t.Fatalf("expected no retry for non-retryable error, got %d calls", len(lister.tokens))
	}
}

func TestNewClientValidatesInput(t *testing.T) {
	if _, err := NewClient(context.Background(), nil, "", "form", testQuestions); err == nil {
		t.Fatalf("expected error for missing credentials")
	}
	if _, err := NewClient(context.Background(), []byte("{}"), "", "", testQuestions); err == nil {
		t.Fatalf("expected error for missing form id")
	}
}
