package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-donations/app/provider"
)

const missingDonorEmail = "Not provided"

// markdownV2Escaper escapes every character Telegram's MarkdownV2 mode
// treats as reserved. The backslash goes first so escapes are not
// double-escaped.
var markdownV2Escaper = strings.NewReplacer(
	`\`, `\\`,
	"_", `\_`,
	"*", `\*`,
	"[", `\[`,
	"]", `\]`,
	"(", `\(`,
	")", `\)`,
	"~", `\~`,
	"`", "\\`",
	">", `\>`,
	"#", `\#`,
	"+", `\+`,
	"-", `\-`,
	"=", `\=`,
	"|", `\|`,
	"{", `\{`,
	"}", `\}`,
	".", `\.`,
	"!", `\!`,
)

func EscapeMarkdownV2(text string) string {
	return markdownV2Escaper.Replace(text)
}

// BuildDonationMessage renders the chat notification for a paid checkout
// session. Only donor-supplied fields are escaped; the mechanical amount
// and date lines are interpolated literally.
func BuildDonationMessage(session *provider.CheckoutSession, donorNote string) string {
	email := strings.TrimSpace(session.CustomerEmail)
	if email == "" {
		email = missingDonorEmail
	}

	var b strings.Builder
	b.WriteString("🎉 *New Donation Received\\!*\n\n")
	fmt.Fprintf(&b, "Amount: %.2f %s\n", float64(session.AmountTotal)/100, strings.ToUpper(session.Currency))
	fmt.Fprintf(&b, "From: %s\n", EscapeMarkdownV2(email))
	fmt.Fprintf(&b, "Date: %s UTC", time.Unix(session.Created, 0).UTC().Format("2006-01-02 15:04:05"))

	if note := strings.TrimSpace(donorNote); note != "" {
		fmt.Fprintf(&b, "\nNote from Donor: %s", EscapeMarkdownV2(note))
	}

	return b.String()
}
