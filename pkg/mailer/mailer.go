// Package mailer defines the outbound mail capability. The SMTP
// implementation is constructed explicitly and injected wherever mail is
// sent; handlers and workers never hold a process-wide transporter.
package mailer

import "context"

// Inline is an attachment embedded in the HTML body by content-id.
// An <img src="cid:NAME"> in the body references it by Name.
type Inline struct {
	Name        string
	ContentType string
	Data        []byte
}

// Message is one outbound email.
type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Inlines []Inline
}

// Sender delivers a message through an outbound transport. Implementations
// must respect ctx cancellation before starting network I/O.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
