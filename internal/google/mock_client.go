package google

import (
	"context"

	"github.com/daniloc96/appstore-testflight-sync/internal/models"
)

// MockClient is a simple mock implementation of the Google Forms client.
type MockClient struct {
	ListCandidatesFunc func(ctx context.Context) ([]models.Candidate, error)
}

func (m *MockClient) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	if m.ListCandidatesFunc == nil {
		return nil, nil
	}
	return m.ListCandidatesFunc(ctx)
}
