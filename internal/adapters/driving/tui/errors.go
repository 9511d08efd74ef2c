package tui

import "errors"

// ErrMissingChatSession is returned when no chat session is provided.
var ErrMissingChatSession = errors.New("tui: chat session is required")

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("tui: search service is required")
