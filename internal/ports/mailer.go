package ports

import "context"

// Mailer delivers one HTML email to a list of recipients.
type Mailer interface {
	Send(ctx context.Context, to []string, subject string, htmlBody string) error
}
