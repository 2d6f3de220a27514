package ai

import (
	"fmt"
	"strings"

	"github.com/ewaller/leadloop/internal/domain"
)

// Fallback builds a deterministic template-based message from the same
// params the composer uses. It performs no I/O and cannot fail; it exists
// so a provider outage degrades to a usable message instead of an error.
func Fallback(p ComposeParams) string {
	if p.Purpose == domain.PurposePayment {
		return fallbackPayment(p)
	}
	return fallbackFollowUp(p)
}

func fallbackFollowUp(p ComposeParams) string {
	if isChineseLocale(p.Locale) {
		var b strings.Builder
		fmt.Fprintf(&b, "尊敬的 %s，\n\n希望您一切顺利。", p.LeadName)
		if p.DaysPassed > 0 {
			fmt.Fprintf(&b, "距离我们上次联系已经过去 %d 天了。", p.DaysPassed)
		}
		b.WriteString("\n\n我想跟进一下我们之前的对话，看看您是否有任何问题或需要我帮助的地方。\n\n如有任何疑问，请随时联系我。\n\n此致\n敬礼")
		return b.String()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\nI hope this message finds you well. ", p.LeadName)
	if p.DaysPassed > 0 {
		plural := ""
		if p.DaysPassed > 1 {
			plural = "s"
		}
		fmt.Fprintf(&b, "It's been %d day%s since we last connected.", p.DaysPassed, plural)
	}
	b.WriteString("\n\nI wanted to follow up on our previous conversation and see if you have any questions or if there's anything I can help you with.\n\nPlease feel free to reach out at your convenience. I'm here to help.\n\nBest regards")
	return b.String()
}

func fallbackPayment(p ComposeParams) string {
	if isChineseLocale(p.Locale) {
		var b strings.Builder
		fmt.Fprintf(&b, "尊敬的 %s，\n\n希望您一切顺利。", p.LeadName)
		if p.Amount != nil {
			fmt.Fprintf(&b, "这是一封关于 %.2f 元付款的友好提醒。", *p.Amount)
		} else {
			b.WriteString("这是一封关于未付款项的友好提醒。")
		}
		b.WriteString("\n\n")
		if p.DueDate != nil {
			fmt.Fprintf(&b, "付款到期日为 %s。", p.DueDate.Format("2006-01-02"))
		} else {
			b.WriteString("我想跟进一下目前未付的款项。")
		}
		b.WriteString("\n\n如果您已经付款，请忽略此消息。如有任何问题或疑虑，请随时联系我。\n\n感谢您的关注。\n\n此致\n敬礼")
		return b.String()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\nI hope you're doing well. ", p.LeadName)
	if p.Amount != nil {
		fmt.Fprintf(&b, "This is a friendly reminder regarding the payment of $%.2f.", *p.Amount)
	} else {
		b.WriteString("This is a friendly reminder regarding your pending payment.")
	}
	b.WriteString("\n\n")
	if p.DueDate != nil {
		fmt.Fprintf(&b, "The payment was due on %s.", p.DueDate.Format("January 2, 2006"))
	} else {
		b.WriteString("I wanted to follow up on the payment that is currently pending.")
	}
	b.WriteString("\n\nIf you've already made the payment, please disregard this message. If you have any questions or concerns, please don't hesitate to reach out.\n\nThank you for your attention to this matter.\n\nBest regards")
	return b.String()
}
