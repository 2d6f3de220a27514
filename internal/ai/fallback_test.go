package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ewaller/leadloop/internal/domain"
)

func TestFallback_FollowUp(t *testing.T) {
	msg := Fallback(ComposeParams{
		Purpose:    domain.PurposeFollowUp,
		LeadName:   "Ada",
		DaysPassed: 3,
		Locale:     "en",
		Now:        time.Now(),
	})

	assert.Contains(t, msg, "Dear Ada,")
	assert.Contains(t, msg, "3 days since we last connected")
	assert.Contains(t, msg, "Best regards")
}

func TestFallback_FollowUpSingularDay(t *testing.T) {
	msg := Fallback(ComposeParams{
		Purpose:    domain.PurposeFollowUp,
		LeadName:   "Ada",
		DaysPassed: 1,
		Locale:     "en",
	})
	assert.Contains(t, msg, "1 day since")
	assert.NotContains(t, msg, "1 days")
}

func TestFallback_Payment(t *testing.T) {
	amount := 99.99
	due := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	msg := Fallback(ComposeParams{
		Purpose:  domain.PurposePayment,
		LeadName: "Ada",
		Amount:   &amount,
		DueDate:  &due,
		Locale:   "en",
		Now:      time.Now(),
	})

	assert.Contains(t, msg, "$99.99")
	assert.Contains(t, msg, "due on May 1, 2025")
}

func TestFallback_PaymentWithoutOptionalFields(t *testing.T) {
	msg := Fallback(ComposeParams{
		Purpose:  domain.PurposePayment,
		LeadName: "Ada",
		Locale:   "en",
	})

	assert.Contains(t, msg, "pending payment")
	assert.Contains(t, msg, "currently pending")
}

func TestFallback_Chinese(t *testing.T) {
	msg := Fallback(ComposeParams{
		Purpose:    domain.PurposeFollowUp,
		LeadName:   "王先生",
		DaysPassed: 5,
		Locale:     "zh-CN",
	})

	assert.Contains(t, msg, "尊敬的 王先生")
	assert.Contains(t, msg, "5 天")
}

func TestFallback_NeverEmptyAndDeterministic(t *testing.T) {
	for _, purpose := range []domain.GenerationPurpose{domain.PurposeFollowUp, domain.PurposePayment} {
		for _, locale := range []string{"en", "zh-CN", ""} {
			p := ComposeParams{Purpose: purpose, LeadName: "Ada", Locale: locale}
			msg := Fallback(p)
			assert.NotEmpty(t, msg)
			assert.Equal(t, msg, Fallback(p))
		}
	}
}
