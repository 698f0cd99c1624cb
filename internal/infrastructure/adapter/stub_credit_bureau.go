package adapter

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// StubCreditBureauClient returns fixed scores per applicant and a default
// for everyone else. Used in development and end-to-end tests.
type StubCreditBureauClient struct {
	scores       map[uuid.UUID]int
	defaultScore int
}

// NewStubCreditBureauClient creates a stub answering defaultScore.
func NewStubCreditBureauClient(defaultScore int) *StubCreditBureauClient {
	return &StubCreditBureauClient{scores: make(map[uuid.UUID]int), defaultScore: defaultScore}
}

// WithScore pins the score reported for applicantID.
func (c *StubCreditBureauClient) WithScore(applicantID uuid.UUID, score int) *StubCreditBureauClient {
	c.scores[applicantID] = score
	return c
}

// GetCreditScore implements port.CreditBureauClient.
func (c *StubCreditBureauClient) GetCreditScore(_ context.Context, applicantID uuid.UUID) (int, error) {
	if applicantID == uuid.Nil {
		return 0, fmt.Errorf("applicant ID is required")
	}
	if score, ok := c.scores[applicantID]; ok {
		return score, nil
	}
	return c.defaultScore, nil
}
