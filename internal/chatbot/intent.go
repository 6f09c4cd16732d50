package chatbot

import (
	"strings"
	"unicode"
)

// Intents, checked in this order.
const (
	IntentAppointment = "appointment"
	IntentRefill      = "refill"
	IntentVitals      = "vitals"
	IntentOrder       = "order"
	IntentHelp        = "help"
	IntentUnknown     = "unknown"
)

var keywords = []struct {
	intent string
	words  []string
}{
	{IntentAppointment, []string{"appointment", "appointments", "book", "booking", "visit"}},
	{IntentRefill, []string{"refill", "prescription", "prescriptions", "renew"}},
	{IntentVitals, []string{"vitals", "bp", "heart", "pulse", "pressure"}},
	{IntentOrder, []string{"order", "orders", "medicine", "medicines", "delivery"}},
	{IntentHelp, []string{"help", "hi", "hello", "menu"}},
}

// Classify returns the first intent whose keyword appears as a word in msg.
func Classify(msg string) string {
	words := strings.FieldsFunc(strings.ToLower(msg), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		seen[w] = true
	}
	for _, k := range keywords {
		for _, w := range k.words {
			if seen[w] {
				return k.intent
			}
		}
	}
	return IntentUnknown
}
