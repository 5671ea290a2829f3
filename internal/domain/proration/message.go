package proration

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MessageOptions controls how amounts are rendered for subscribers
type MessageOptions struct {
	CurrencySymbol string
	// Locale is a BCP 47 tag, e.g. "de" renders 1.234,50
	Locale string
}

// FormatMessage describes a proration result in one customer facing sentence
func FormatMessage(result *ProrationResult, opts MessageOptions) string {
	tag, err := language.Parse(opts.Locale)
	if err != nil {
		tag = language.German
	}
	p := message.NewPrinter(tag)

	if result != nil && !result.ProrationEnabled {
		return p.Sprintf("Proration is not enabled for your membership level.")
	}
	if result == nil || result.Amount.IsZero() {
		return p.Sprintf("No proration will be applied for this change.")
	}

	seats := result.SeatDelta()
	if seats < 0 {
		seats = -seats
	}
	days := result.DaysRemaining.Round(0).IntPart()
	amount, _ := result.Amount.Abs().Float64()

	if result.IsCredit() {
		return p.Sprintf("You will receive a credit of %s%.2f for removing %d seat(s) for the remaining %d days of your billing period.",
			opts.CurrencySymbol, amount, seats, days)
	}
	return p.Sprintf("You will be charged %s%.2f for %d additional seat(s) for the remaining %d days of your billing period.",
		opts.CurrencySymbol, amount, seats, days)
}
