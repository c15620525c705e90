// Package queue defines message payloads exchanged over the message
// broker and the background consumer that processes them.
package queue

// Event kinds carried in the MailerEvent envelope.
const (
    KindPasswordReset   = "password_reset"
    KindNewsletterOptIn = "newsletter_optin"
)

// MailerEvent is published for anything that results in outbound
// mail.  The service never talks to a mail provider directly: it
// drops an event on the queue and moves on, so a slow or failing
// provider can never stall a request — and, for password resets, a
// delivery failure can never leak account existence to the caller.
type MailerEvent struct {
    Kind        string `json:"kind"`
    Email       string `json:"email"`
    ResetLink   string `json:"reset_link,omitempty"`
    RequestedAt string `json:"requested_at"`
}
