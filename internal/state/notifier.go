package state

import (
	"context"
	"log/slog"

	"github.com/itsNik05/Coin-Tracker-01/internal/service"
)

// LogNotifier writes notifications to a logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify implements service.Notifier.
func (n LogNotifier) Notify(note service.Notification) {
	level := slog.LevelInfo
	switch note.Severity {
	case service.SeverityWarning:
		level = slog.LevelWarn
	case service.SeverityError:
		level = slog.LevelError
	}
	n.Logger.Log(context.Background(), level, note.Title, "message", note.Message, "error", note.Err)
}

// NotifierFunc adapts a function to service.Notifier.
type NotifierFunc func(service.Notification)

// Notify implements service.Notifier.
func (f NotifierFunc) Notify(note service.Notification) {
	f(note)
}
