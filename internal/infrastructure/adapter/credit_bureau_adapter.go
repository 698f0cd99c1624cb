package adapter

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Bureau identifies a credit bureau provider.
type Bureau string

const (
	BureauCIBIL    Bureau = "CIBIL"
	BureauExperian Bureau = "EXPERIAN"
	BureauEquifax  Bureau = "EQUIFAX"
	BureauCRIF     Bureau = "CRIF"
)

// Score bounds reported by the bureaus.
const (
	MinBureauScore = 300
	MaxBureauScore = 900
)

// CreditBureauConfig holds configuration for the credit bureau adapter.
type CreditBureauConfig struct {
	PrimaryBureau Bureau
	// MaxRetries is the number of extra attempts on transient failures.
	MaxRetries     int
	RetryBackoffMs int
}

// DefaultCreditBureauConfig returns development defaults.
func DefaultCreditBureauConfig() CreditBureauConfig {
	return CreditBureauConfig{
		PrimaryBureau:  BureauCIBIL,
		MaxRetries:     3,
		RetryBackoffMs: 200,
	}
}

// CreditReport is the subset of a bureau report the lending service reads.
type CreditReport struct {
	Bureau      Bureau
	ApplicantID uuid.UUID
	Score       int
	ReportDate  time.Time
}

// BureauClient fetches reports from a bureau API.
type BureauClient interface {
	FetchCreditReport(ctx context.Context, bureau Bureau, applicantID uuid.UUID) (CreditReport, error)
}

// CreditBureauAdapter implements port.CreditBureauClient. With no client it
// answers with a deterministic simulated score.
type CreditBureauAdapter struct {
	config CreditBureauConfig
	client BureauClient
}

// NewCreditBureauAdapter creates an adapter; client may be nil.
func NewCreditBureauAdapter(config CreditBureauConfig, client BureauClient) *CreditBureauAdapter {
	return &CreditBureauAdapter{config: config, client: client}
}

// GetCreditScore returns the applicant's score, retrying transient failures.
func (a *CreditBureauAdapter) GetCreditScore(ctx context.Context, applicantID uuid.UUID) (int, error) {
	if applicantID == uuid.Nil {
		return 0, fmt.Errorf("applicant ID is required")
	}
	if a.client == nil {
		return simulatedScore(applicantID), nil
	}

	report, err := a.fetchWithRetry(ctx, applicantID)
	if err != nil {
		return 0, fmt.Errorf("credit bureau request failed: %w", err)
	}
	if report.Score < MinBureauScore || report.Score > MaxBureauScore {
		return 0, fmt.Errorf("credit bureau %s returned score %d outside %d-%d",
			report.Bureau, report.Score, MinBureauScore, MaxBureauScore)
	}
	return report.Score, nil
}

// fetchWithRetry calls the bureau with exponential backoff and jitter.
func (a *CreditBureauAdapter) fetchWithRetry(ctx context.Context, applicantID uuid.UUID) (CreditReport, error) {
	var lastErr error

	for attempt := 0; attempt <= a.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(a.config.RetryBackoffMs) * time.Millisecond * (1 << uint(attempt-1))
			var jitter time.Duration
			if backoff > 1 {
				jitter = time.Duration(rand.Int63n(int64(backoff) / 2))
			}
			select {
			case <-ctx.Done():
				return CreditReport{}, ctx.Err()
			case <-time.After(backoff + jitter):
			}
		}

		report, err := a.client.FetchCreditReport(ctx, a.config.PrimaryBureau, applicantID)
		if err == nil {
			return report, nil
		}
		lastErr = err
	}

	return CreditReport{}, fmt.Errorf("exhausted %d retries: %w", a.config.MaxRetries, lastErr)
}

// simulatedScore derives a stable score in [300, 900] from the applicant ID.
func simulatedScore(applicantID uuid.UUID) int {
	h := sha256.Sum256(applicantID[:])
	return MinBureauScore + int(binary.BigEndian.Uint32(h[:4])%uint32(MaxBureauScore-MinBureauScore+1))
}
