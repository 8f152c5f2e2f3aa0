// Package messages defines Bubbletea message types for the chat TUI.
package messages

import (
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
)

// HistoryLoaded carries the chat transcript loaded at start-up.
type HistoryLoaded struct {
	Chat *domain.Chat
	Err  error
}

// ReplyReceived carries the outcome of sending a prompt.
type ReplyReceived struct {
	Result *driving.SendResult
	Err    error
}
