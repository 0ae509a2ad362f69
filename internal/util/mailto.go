package util

import (
	"net/url"
	"strings"
)

// MailtoLink builds a mailto URI with subject and body hfields, percent-encoded per RFC 6068.
// Line breaks in body are sent as CRLF.
func MailtoLink(to, subject, body string) string {
	var b strings.Builder
	b.WriteString("mailto:")
	b.WriteString(strings.ReplaceAll(mailtoEscape(to), "%40", "@"))

	sep := "?"
	if subject != "" {
		b.WriteString(sep + "subject=" + mailtoEscape(subject))
		sep = "&"
	}
	if body != "" {
		body = strings.ReplaceAll(body, "\r\n", "\n")
		body = strings.ReplaceAll(body, "\n", "\r\n")
		b.WriteString(sep + "body=" + mailtoEscape(body))
	}
	return b.String()
}

// QueryEscape writes spaces as "+", which mail clients show literally.
func mailtoEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
