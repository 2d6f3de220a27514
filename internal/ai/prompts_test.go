package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ewaller/leadloop/internal/domain"
)

func TestNormalizeTone_FollowUp(t *testing.T) {
	tests := []struct {
		alias string
		want  Tone
	}{
		{"polite", ToneSoft},
		{"friendly", ToneSoft},
		{"professional", ToneProfessional},
		{"casual", ToneFirm},
		{"", ToneSoft},
		{"sarcastic", ToneSoft},
		{"  Polite ", ToneSoft},
	}

	for _, tt := range tests {
		t.Run("alias="+tt.alias, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTone(domain.PurposeFollowUp, tt.alias))
		})
	}
}

func TestNormalizeTone_Payment(t *testing.T) {
	tests := []struct {
		alias string
		want  Tone
	}{
		{"polite", ToneProfessional},
		{"professional", ToneProfessional},
		{"friendly", ToneFirm},
		{"casual", ToneFirm},
		{"", ToneProfessional},
		{"unknown", ToneProfessional},
	}

	for _, tt := range tests {
		t.Run("alias="+tt.alias, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTone(domain.PurposePayment, tt.alias))
		})
	}

	// A payment reminder can never be soft, whatever the alias.
	for _, alias := range []string{"polite", "friendly", "professional", "casual", "soft", ""} {
		assert.NotEqual(t, ToneSoft, NormalizeTone(domain.PurposePayment, alias))
	}
}

func TestComposeParams_DaysOverdue(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tenDaysAgo := now.AddDate(0, 0, -10)
	future := now.AddDate(0, 0, 3)

	tests := []struct {
		name    string
		dueDate *time.Time
		want    int
	}{
		{"ten days past due", &tenDaysAgo, 10},
		{"future due date clamps to zero", &future, 0},
		{"no due date", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ComposeParams{Purpose: domain.PurposePayment, DueDate: tt.dueDate, Now: now}
			assert.Equal(t, tt.want, p.DaysOverdue())
		})
	}
}

func TestCompose_FollowUp(t *testing.T) {
	p := ComposeParams{
		Purpose:    domain.PurposeFollowUp,
		LeadName:   "Ada",
		DaysPassed: 7,
		Tone:       "casual",
		Locale:     "en",
		Now:        time.Now(),
	}

	prompt := Compose(p)
	assert.NotEmpty(t, prompt.System)
	assert.Contains(t, prompt.User, "Days since last reply: 7")
	assert.Contains(t, prompt.User, "Tone: firm")
}

func TestCompose_PaymentCarriesDaysOverdueAndAmount(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, -10)
	amount := 1250.50

	prompt := Compose(ComposeParams{
		Purpose:  domain.PurposePayment,
		LeadName: "Ada",
		Amount:   &amount,
		DueDate:  &due,
		Tone:     "friendly",
		Locale:   "en",
		Now:      now,
	})

	assert.Contains(t, prompt.User, "Days overdue: 10")
	assert.Contains(t, prompt.User, "Amount: $1250.50")
	assert.Contains(t, prompt.User, "Tone: firm")
}

func TestCompose_LocaleSelection(t *testing.T) {
	base := ComposeParams{
		Purpose:    domain.PurposeFollowUp,
		LeadName:   "Ada",
		DaysPassed: 3,
		Now:        time.Now(),
	}

	base.Locale = "zh-CN"
	zh := Compose(base)
	assert.Contains(t, zh.User, "跟进消息")

	base.Locale = "en"
	en := Compose(base)
	assert.Contains(t, en.User, "follow-up message")

	// Unknown locales fall back to English.
	base.Locale = "klingon"
	fallback := Compose(base)
	assert.Equal(t, en, fallback)
}

func TestCompose_NeverLeaksIdentifiers(t *testing.T) {
	// The composer receives no IDs at all; assert the prompt only carries
	// the display name the caller supplied.
	prompt := Compose(ComposeParams{
		Purpose:  domain.PurposeFollowUp,
		LeadName: "Grace Hopper",
		Locale:   "en",
		Now:      time.Now(),
	})
	assert.NotContains(t, prompt.System, "Grace Hopper")
	assert.NotContains(t, prompt.User, "@")
}

func TestCompose_Deterministic(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	p := ComposeParams{
		Purpose:    domain.PurposeFollowUp,
		LeadName:   "Ada",
		DaysPassed: 2,
		Tone:       "polite",
		Locale:     "en",
		Now:        now,
	}
	assert.Equal(t, Compose(p), Compose(p))
}
