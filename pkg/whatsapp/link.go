// Package whatsapp builds click-to-chat deep links.
package whatsapp

import (
	"net/url"
	"strings"
	"unicode"
)

const baseURL = "https://wa.me/"

// Digits strips everything but digits from a phone number, so
// "+506 8674 2604" becomes "50686742604".
func Digits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Link returns the wa.me URL that opens a chat with phone prefilled with text.
func Link(phone, text string) string {
	link := baseURL + Digits(phone)
	if strings.TrimSpace(text) == "" {
		return link
	}
	return link + "?text=" + url.QueryEscape(text)
}
