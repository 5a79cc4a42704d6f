package plan

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLocale is used for price formatting when callers don't specify one.
// The platform's customer base is Brazilian, matching the BRL-priced catalog.
var DefaultLocale = language.BrazilianPortuguese

// FormatPrice renders a plan price for display, e.g. "R$ 29,00" for
// {Amount: 2900, Currency: "BRL"} under the pt-BR locale.
// Falls back to a plain "<amount> <code>" rendering for unknown currencies.
func FormatPrice(m Money, locale language.Tag) string {
	unit, err := currency.ParseISO(m.Currency)
	if err != nil {
		return fmt.Sprintf("%.2f %s", float64(m.Amount)/100, m.Currency)
	}
	p := message.NewPrinter(locale)
	return p.Sprint(currency.Symbol(unit.Amount(float64(m.Amount) / 100)))
}

// DisplayPrice is FormatPrice under DefaultLocale.
func (p Plan) DisplayPrice() string {
	return FormatPrice(p.Price, DefaultLocale)
}
