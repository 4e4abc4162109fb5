// Package mcp provides an MCP (Model Context Protocol) server adapter for pacer.
// It lets AI assistants ask for slide duration suggestions and index decks.
package mcp

import "errors"

var (
	// ErrMissingSuggestionService is returned when the suggestion service is not provided.
	ErrMissingSuggestionService = errors.New("mcp: suggestion service is required")

	// ErrRateLimited is returned when an owner exceeds its request budget.
	ErrRateLimited = errors.New("mcp: rate limit exceeded")

	// ErrNotAuthorised is returned for owners the directory does not know.
	ErrNotAuthorised = errors.New("mcp: owner not authorised")
)
