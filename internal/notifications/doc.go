// Package notifications delivers reconciliation outcome messages to an
// operator-facing Discord channel. Deliveries honor provider rate limits
// by blocking for the instructed interval and retrying until accepted,
// so a burst of outcomes never drops a message.
package notifications
