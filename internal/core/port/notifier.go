package port

// Notifier delivers advisory messages. Implementations must never block
// the caller and must never surface delivery failures.
type Notifier interface {
	Notify(recipient, subject, body string)
}
