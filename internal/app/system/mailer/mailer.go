// Package mailer builds outbound emails and delivers mail-outbox messages
// through SendGrid.
package mailer

// Email is one outbound message ready for delivery.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}
