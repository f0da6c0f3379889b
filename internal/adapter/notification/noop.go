package notification

// Noop satisfies the notifier port when no SMTP host is configured.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (Noop) Notify(string, string, string) {}
