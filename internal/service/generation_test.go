package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ewaller/leadloop/internal/ai"
	"github.com/ewaller/leadloop/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingProvider is a race-safe ai.Provider double so the concurrency
// test can run it from many goroutines.
type countingProvider struct {
	mu    sync.Mutex
	calls int
	text  string
	err   error
}

func (p *countingProvider) Complete(_ context.Context, _ ai.Prompt) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.text, nil
}

func (p *countingProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func newGenerationTestEnv(t *testing.T, plan string, provider ai.Provider) (*fakeQuerier, GenerationService, uuid.UUID, uuid.UUID) {
	t.Helper()
	fq := newFakeQuerier()
	usage := NewUsageService(fq, testLogger())
	svc := NewGenerationService(fq, provider, usage, time.Second, testLogger())
	userID := fq.addUser(plan)
	leadID := fq.addLead(userID, "Sarah Chen")
	return fq, svc, userID, leadID
}

func followUpParams(userID, leadID uuid.UUID) domain.GenerationParams {
	return domain.GenerationParams{
		UserID:     userID,
		LeadID:     leadID,
		Purpose:    domain.PurposeFollowUp,
		LeadStatus: "contacted",
		DaysPassed: 4,
		Tone:       "friendly",
		Locale:     "en",
	}
}

func TestGenerate_ProviderText(t *testing.T) {
	provider := &countingProvider{text: "Hi Sarah, just following up on our chat."}
	fq, svc, userID, leadID := newGenerationTestEnv(t, "free", provider)

	result, err := svc.Generate(context.Background(), followUpParams(userID, leadID))
	require.NoError(t, err)

	assert.Equal(t, provider.text, result.Text)
	assert.Equal(t, 1, provider.callCount())
	assert.Equal(t, 1, fq.logCount())
	// The returned summary already includes the entry just written.
	assert.Equal(t, 1, result.Usage.AIUsageThisMonth)
	assert.True(t, result.Usage.CanUseAI)
}

func TestGenerate_ProviderErrorFallsBack(t *testing.T) {
	provider := &countingProvider{err: ai.ErrUnavailable}
	fq, svc, userID, leadID := newGenerationTestEnv(t, "free", provider)

	result, err := svc.Generate(context.Background(), followUpParams(userID, leadID))
	require.NoError(t, err, "provider failures must degrade, not propagate")

	assert.NotEmpty(t, result.Text)
	assert.Contains(t, result.Text, "Sarah Chen")
	assert.Equal(t, 1, provider.callCount())
	// The fallback text is logged exactly like provider text.
	assert.Equal(t, 1, fq.logCount())
	assert.Equal(t, 1, result.Usage.AIUsageThisMonth)
}

func TestGenerate_EmptyResponseFallsBack(t *testing.T) {
	provider := &countingProvider{text: ""}
	fq, svc, userID, leadID := newGenerationTestEnv(t, "free", provider)

	result, err := svc.Generate(context.Background(), followUpParams(userID, leadID))
	require.NoError(t, err)

	assert.NotEmpty(t, result.Text)
	assert.Equal(t, 1, fq.logCount())
}

func TestGenerate_PaymentFallbackIncludesAmount(t *testing.T) {
	provider := &countingProvider{err: ai.ErrTimeout}
	_, svc, userID, leadID := newGenerationTestEnv(t, "free", provider)

	amount := 1250.50
	due := time.Now().AddDate(0, 0, -3)
	params := domain.GenerationParams{
		UserID:  userID,
		LeadID:  leadID,
		Purpose: domain.PurposePayment,
		Amount:  &amount,
		DueDate: &due,
		Locale:  "en",
	}

	result, err := svc.Generate(context.Background(), params)
	require.NoError(t, err)
	assert.Contains(t, result.Text, "1250.50")
	assert.Contains(t, result.Text, "Sarah Chen")
}

func TestGenerate_DeniedNoSideEffects(t *testing.T) {
	provider := &countingProvider{text: "should never be requested"}
	fq, svc, userID, leadID := newGenerationTestEnv(t, "free", provider)

	start, _ := MonthBounds(time.Now())
	for i := 0; i < domain.FreePlanAILimit; i++ {
		fq.addLogEntry(userID, start.Add(time.Duration(i)*time.Minute))
	}

	_, err := svc.Generate(context.Background(), followUpParams(userID, leadID))
	require.Error(t, err)

	var qe *domain.QuotaError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, domain.ReasonAILimitReached, qe.Reason)
	assert.Equal(t, domain.FreePlanAILimit, qe.Usage.AIUsageThisMonth)
	assert.False(t, qe.Usage.CanUseAI)

	// A denied request never reaches the provider and never writes.
	assert.Equal(t, 0, provider.callCount())
	assert.Equal(t, 0, fq.logInsertCalls)
	assert.Equal(t, domain.FreePlanAILimit, fq.logCount())
}

func TestGenerate_DenialMapsToPaymentRequired(t *testing.T) {
	provider := &countingProvider{text: "x"}
	fq, svc, userID, leadID := newGenerationTestEnv(t, "free", provider)

	start, _ := MonthBounds(time.Now())
	for i := 0; i < domain.FreePlanAILimit; i++ {
		fq.addLogEntry(userID, start.Add(time.Duration(i)*time.Minute))
	}

	_, err := svc.Generate(context.Background(), followUpParams(userID, leadID))
	require.Error(t, err)
	assert.Equal(t, domain.EPAYMENT, domain.ErrorCode(err))
	assert.Contains(t, strings.ToUpper(domain.ErrorMessage(err)), "LIMIT")
}

func TestGenerate_LastMonthUsageDoesNotCount(t *testing.T) {
	provider := &countingProvider{text: "hello"}
	fq, svc, userID, leadID := newGenerationTestEnv(t, "free", provider)

	// A heavy previous month resets cleanly at the boundary.
	start, _ := MonthBounds(time.Now())
	for i := 0; i < 40; i++ {
		fq.addLogEntry(userID, start.Add(-time.Duration(i+1)*time.Hour))
	}

	result, err := svc.Generate(context.Background(), followUpParams(userID, leadID))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Usage.AIUsageThisMonth)
}

func TestGenerate_ProUnlimited(t *testing.T) {
	provider := &countingProvider{text: "pro text"}
	fq, svc, userID, leadID := newGenerationTestEnv(t, "pro", provider)

	start, _ := MonthBounds(time.Now())
	for i := 0; i < 1000; i++ {
		fq.addLogEntry(userID, start.Add(time.Duration(i)*time.Second))
	}

	result, err := svc.Generate(context.Background(), followUpParams(userID, leadID))
	require.NoError(t, err)

	assert.Equal(t, "pro text", result.Text)
	assert.Nil(t, result.Usage.AILimit)
	assert.Equal(t, 1001, result.Usage.AIUsageThisMonth)
	assert.True(t, result.Usage.CanUseAI)
}

func TestGenerate_LeadNotFound(t *testing.T) {
	provider := &countingProvider{text: "x"}
	fq, svc, userID, _ := newGenerationTestEnv(t, "free", provider)

	params := followUpParams(userID, uuid.New())
	_, err := svc.Generate(context.Background(), params)
	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
	assert.Equal(t, 0, provider.callCount())
	assert.Equal(t, 0, fq.logCount())
}

func TestGenerate_ForeignLeadBehavesAsMissing(t *testing.T) {
	provider := &countingProvider{text: "x"}
	fq, svc, userID, _ := newGenerationTestEnv(t, "free", provider)

	intruder := fq.addUser("free")
	theirLead := fq.addLead(intruder, "Not Yours")

	_, err := svc.Generate(context.Background(), followUpParams(userID, theirLead))
	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestGenerate_InvalidPurpose(t *testing.T) {
	provider := &countingProvider{text: "x"}
	_, svc, userID, leadID := newGenerationTestEnv(t, "free", provider)

	params := followUpParams(userID, leadID)
	params.Purpose = domain.GenerationPurpose("newsletter")

	_, err := svc.Generate(context.Background(), params)
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Equal(t, 0, provider.callCount())
}

// TestGenerate_ConcurrentAdmission hammers one free account from many
// goroutines at once. The conditional append decides admission atomically,
// so no interleaving can push the month past the limit.
func TestGenerate_ConcurrentAdmission(t *testing.T) {
	provider := &countingProvider{text: "concurrent hello"}
	fq, svc, userID, leadID := newGenerationTestEnv(t, "free", provider)

	const attempts = 25

	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Generate(context.Background(), followUpParams(userID, leadID))
			results[i] = err
		}(i)
	}
	wg.Wait()

	successes := 0
	denials := 0
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		default:
			var qe *domain.QuotaError
			require.ErrorAs(t, err, &qe, "unexpected error kind: %v", err)
			assert.Equal(t, domain.ReasonAILimitReached, qe.Reason)
			denials++
		}
	}

	assert.Equal(t, domain.FreePlanAILimit, successes)
	assert.Equal(t, attempts-domain.FreePlanAILimit, denials)
	assert.Equal(t, domain.FreePlanAILimit, fq.logCount())
}

func TestGenerate_ExactLimitBoundary(t *testing.T) {
	// One below the limit admits; the very next request is denied.
	provider := &countingProvider{text: "x"}
	fq, svc, userID, leadID := newGenerationTestEnv(t, "free", provider)

	start, _ := MonthBounds(time.Now())
	for i := 0; i < domain.FreePlanAILimit-1; i++ {
		fq.addLogEntry(userID, start.Add(time.Duration(i)*time.Minute))
	}

	_, err := svc.Generate(context.Background(), followUpParams(userID, leadID))
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), followUpParams(userID, leadID))
	require.Error(t, err)

	var qe *domain.QuotaError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, domain.FreePlanAILimit, fq.logCount())
}

func TestGenerate_NotFoundIsNotAbsorbed(t *testing.T) {
	// Provider resilience must not blur into swallowing domain errors:
	// a missing lead propagates even though a broken provider would not.
	provider := &countingProvider{err: errors.New("hard provider outage")}
	_, svc, userID, _ := newGenerationTestEnv(t, "free", provider)

	_, err := svc.Generate(context.Background(), followUpParams(userID, uuid.New()))
	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}
