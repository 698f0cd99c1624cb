package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockBureauClient struct {
	calls int
	fn    func(call int) (CreditReport, error)
}

func (m *mockBureauClient) FetchCreditReport(_ context.Context, _ Bureau, _ uuid.UUID) (CreditReport, error) {
	m.calls++
	return m.fn(m.calls)
}

func TestCreditBureauAdapter_SimulatedScoreIsStable(t *testing.T) {
	a := NewCreditBureauAdapter(DefaultCreditBureauConfig(), nil)
	id := uuid.New()

	first, err := a.GetCreditScore(context.Background(), id)
	require.NoError(t, err)
	second, err := a.GetCreditScore(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.GreaterOrEqual(t, first, MinBureauScore)
	assert.LessOrEqual(t, first, MaxBureauScore)
}

func TestCreditBureauAdapter_RejectsNilApplicant(t *testing.T) {
	a := NewCreditBureauAdapter(DefaultCreditBureauConfig(), nil)
	_, err := a.GetCreditScore(context.Background(), uuid.Nil)
	assert.Error(t, err)
}

func TestCreditBureauAdapter_RetriesTransientFailures(t *testing.T) {
	client := &mockBureauClient{fn: func(call int) (CreditReport, error) {
		if call < 3 {
			return CreditReport{}, errors.New("bureau unavailable")
		}
		return CreditReport{Bureau: BureauCIBIL, Score: 782, ReportDate: time.Now()}, nil
	}}
	a := NewCreditBureauAdapter(CreditBureauConfig{PrimaryBureau: BureauCIBIL, MaxRetries: 3, RetryBackoffMs: 1}, client)

	score, err := a.GetCreditScore(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 782, score)
	assert.Equal(t, 3, client.calls)
}

func TestCreditBureauAdapter_GivesUpAfterRetries(t *testing.T) {
	client := &mockBureauClient{fn: func(int) (CreditReport, error) {
		return CreditReport{}, errors.New("timeout")
	}}
	a := NewCreditBureauAdapter(CreditBureauConfig{MaxRetries: 2, RetryBackoffMs: 1}, client)

	_, err := a.GetCreditScore(context.Background(), uuid.New())
	assert.ErrorContains(t, err, "exhausted 2 retries")
	assert.Equal(t, 3, client.calls)
}

func TestCreditBureauAdapter_RejectsOutOfRangeScore(t *testing.T) {
	client := &mockBureauClient{fn: func(int) (CreditReport, error) {
		return CreditReport{Bureau: BureauCRIF, Score: 950}, nil
	}}
	a := NewCreditBureauAdapter(CreditBureauConfig{}, client)

	_, err := a.GetCreditScore(context.Background(), uuid.New())
	assert.ErrorContains(t, err, "outside 300-900")
}

func TestCreditBureauAdapter_HonoursCancellation(t *testing.T) {
	client := &mockBureauClient{fn: func(int) (CreditReport, error) {
		return CreditReport{}, errors.New("unavailable")
	}}
	a := NewCreditBureauAdapter(CreditBureauConfig{MaxRetries: 5, RetryBackoffMs: 1000}, client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.GetCreditScore(ctx, uuid.New())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStubCreditBureauClient(t *testing.T) {
	pinned := uuid.New()
	c := NewStubCreditBureauClient(720).WithScore(pinned, 640)

	score, err := c.GetCreditScore(context.Background(), pinned)
	require.NoError(t, err)
	assert.Equal(t, 640, score)

	score, err = c.GetCreditScore(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 720, score)
}

func TestStubIdentityVerifier(t *testing.T) {
	blocked := uuid.New()
	v := NewStubIdentityVerifier(blocked)

	id, err := v.GetIdentity(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, id.KYCVerified)
	assert.Regexp(t, `^UHID-[0-9A-F]{8}$`, id.UHID)

	id, err = v.GetIdentity(context.Background(), blocked)
	require.NoError(t, err)
	assert.False(t, id.KYCVerified)

	_, err = v.GetIdentity(context.Background(), uuid.Nil)
	assert.Error(t, err)
}
