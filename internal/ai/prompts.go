package ai

import (
	"fmt"
	"strings"
	"time"

	"github.com/ewaller/leadloop/internal/domain"
	"golang.org/x/text/language"
)

// Tone is a canonical message tone after alias normalization.
type Tone string

const (
	ToneSoft         Tone = "soft"
	ToneProfessional Tone = "professional"
	ToneFirm         Tone = "firm"
)

// Tone alias tables, one per purpose. Adding a tone or purpose is a data
// change here, not a code change. Unknown aliases take the purpose default.
//
// The tables are deliberately asymmetric: a payment reminder must never
// sound soft, so its vocabulary is reduced to {professional, firm}.
var (
	followUpTones = map[string]Tone{
		"polite":       ToneSoft,
		"friendly":     ToneSoft,
		"professional": ToneProfessional,
		"casual":       ToneFirm,
	}
	followUpDefaultTone = ToneSoft

	paymentTones = map[string]Tone{
		"polite":       ToneProfessional,
		"professional": ToneProfessional,
		"friendly":     ToneFirm,
		"casual":       ToneFirm,
	}
	paymentDefaultTone = ToneProfessional
)

// NormalizeTone maps a raw tone alias to the canonical tone for a purpose.
func NormalizeTone(purpose domain.GenerationPurpose, alias string) Tone {
	alias = strings.ToLower(strings.TrimSpace(alias))
	if purpose == domain.PurposePayment {
		if t, ok := paymentTones[alias]; ok {
			return t
		}
		return paymentDefaultTone
	}
	if t, ok := followUpTones[alias]; ok {
		return t
	}
	return followUpDefaultTone
}

// Supported prompt locales. Unknown tags fall back to English.
var localeMatcher = language.NewMatcher([]language.Tag{
	language.English,
	language.SimplifiedChinese,
})

// isChineseLocale reports whether the locale tag resolves to zh-CN.
func isChineseLocale(locale string) bool {
	tag, err := language.Parse(locale)
	if err != nil {
		return false
	}
	_, idx, _ := localeMatcher.Match(tag)
	return idx == 1
}

// ComposeParams is the input to prompt composition. Everything here is
// caller-supplied display data; account and lead identifiers are
// intentionally absent so they can never leak into a prompt.
type ComposeParams struct {
	Purpose    domain.GenerationPurpose
	LeadName   string
	LeadStatus string
	DaysPassed int
	Amount     *float64
	DueDate    *time.Time
	Tone       string // raw alias
	Locale     string
	Now        time.Time
}

// DaysOverdue returns how many whole days the due date lies in the past,
// clamped at zero for future or absent due dates.
func (p ComposeParams) DaysOverdue() int {
	if p.DueDate == nil {
		return 0
	}
	d := int(p.Now.Sub(*p.DueDate).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// Compose builds the system/user prompt pair for a generation request.
// It is pure and deterministic: the same params always produce the same
// prompt.
func Compose(p ComposeParams) Prompt {
	if p.Purpose == domain.PurposePayment {
		return composePayment(p)
	}
	return composeFollowUp(p)
}

func composeFollowUp(p ComposeParams) Prompt {
	tone := NormalizeTone(domain.PurposeFollowUp, p.Tone)

	if isChineseLocale(p.Locale) {
		return Prompt{
			System: "你是一个专业的销售助手，帮助小企业主跟进客户。你的目标是听起来礼貌、人性化且专业——不要显得咄咄逼人。消息应该减少压力并增加回复概率。",
			User: fmt.Sprintf(`用中文写一封跟进消息。

上下文：
- 距离上次回复的天数：%d
- 关系：现有客户
- 语气：%s

规则：
- 简短自然
- 不要施加压力
- 以简单的问题结尾`, p.DaysPassed, chineseTone(tone)),
		}
	}

	return Prompt{
		System: "You are a professional sales assistant helping a small business owner follow up with a client. Your goal is to sound polite, human, and professional — not pushy. The message should reduce pressure and increase reply probability.",
		User: fmt.Sprintf(`Write a follow-up message in English.

Context:
- Days since last reply: %d
- Relationship: existing client
- Tone: %s

Rules:
- Short and natural
- No pressure
- End with an easy question`, p.DaysPassed, tone),
	}
}

func composePayment(p ComposeParams) Prompt {
	tone := NormalizeTone(domain.PurposePayment, p.Tone)
	daysOverdue := p.DaysOverdue()

	if isChineseLocale(p.Locale) {
		user := fmt.Sprintf(`用中文写一封付款提醒。

上下文：
- 项目已完成
- 付款待处理
- 逾期天数：%d
- 语气：%s`, daysOverdue, chineseTone(tone))
		if p.Amount != nil {
			user += fmt.Sprintf("\n- 金额：%.2f", *p.Amount)
		}
		user += `

规则：
- 保持尊重
- 提及完成情况
- 清晰但友好`
		return Prompt{
			System: "你帮助企业主礼貌但清楚地请求付款。消息必须保护关系，同时提醒付款。",
			User:   user,
		}
	}

	user := fmt.Sprintf(`Write a payment reminder in English.

Context:
- Project is completed
- Payment is pending
- Days overdue: %d
- Tone: %s`, daysOverdue, tone)
	if p.Amount != nil {
		user += fmt.Sprintf("\n- Amount: $%.2f", *p.Amount)
	}
	user += `

Rules:
- Be respectful
- Mention completion
- Clear but friendly`
	return Prompt{
		System: "You help a business owner request payment politely but clearly. The message must protect the relationship while reminding about payment.",
		User:   user,
	}
}

// chineseTone renders a canonical tone in Chinese for zh-CN prompts.
func chineseTone(t Tone) string {
	switch t {
	case ToneProfessional:
		return "专业"
	case ToneFirm:
		return "坚定"
	default:
		return "温和"
	}
}
