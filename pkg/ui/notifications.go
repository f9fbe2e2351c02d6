package ui

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// NotificationSender delivers a desktop notification
type NotificationSender interface {
	Send(title, message string) error
}

// LinuxNotificationSender sends notifications on Linux using notify-send
type LinuxNotificationSender struct{}

func (l *LinuxNotificationSender) Send(title, message string) error {
	return exec.Command("notify-send", title, message).Run()
}

// MacOSNotificationSender sends notifications on macOS using osascript
type MacOSNotificationSender struct{}

func (m *MacOSNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`display notification %q with title %q`, message, title)
	return exec.Command("osascript", "-e", script).Run()
}

// Notifier announces the end of a crawl on the console and, when enabled,
// on the desktop
type Notifier struct {
	sender NotificationSender
}

// NewNotifier creates a notifier. Desktop delivery is used only when
// desktop is true and the platform has a sender.
func NewNotifier(desktop bool) *Notifier {
	if !desktop {
		return &Notifier{}
	}

	var sender NotificationSender
	switch runtime.GOOS {
	case "linux":
		sender = &LinuxNotificationSender{}
	case "darwin":
		sender = &MacOSNotificationSender{}
	}
	return &Notifier{sender: sender}
}

// NewNotifierWithSender creates a notifier that delivers through sender
func NewNotifierWithSender(sender NotificationSender) *Notifier {
	return &Notifier{sender: sender}
}

// RunFinished reports a completed crawl
func (n *Notifier) RunFinished(added, total int, reason string) {
	msg := fmt.Sprintf("%d new records, %d stored", added, total)
	if reason != "" {
		msg += " (" + strings.ReplaceAll(reason, "_", " ") + ")"
	}
	n.send("CRAWL COMPLETE", msg, Green)
}

// RunFailed reports a crawl that stopped on an error
func (n *Notifier) RunFailed(err error) {
	n.send("CRAWL FAILED", err.Error(), Red)
}

func (n *Notifier) send(title, message string, color func(string) string) {
	if !quietMode {
		fmt.Fprintf(output, "\n%s: %s\n", color(title), message)
	}
	if n.sender != nil {
		// desktop delivery is best-effort
		_ = n.sender.Send(title, message)
	}
}
