package tui

import "errors"

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("tui: chat service is required")

// ErrMissingSession is returned when no chat or owner is selected.
var ErrMissingSession = errors.New("tui: chat id and owner are required")
