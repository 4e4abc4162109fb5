package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pacer/internal/core/domain"
)

// SuggestInput is the input schema for the suggest_duration tool.
type SuggestInput struct {
	Owner   string   `json:"owner" jsonschema:"the author whose timed slides are searched"`
	Title   string   `json:"title" jsonschema:"title of the slide to time"`
	Content []string `json:"content" jsonschema:"text fragments of the slide in order"`
}

// SuggestOutput is the output schema for the suggest_duration tool.
type SuggestOutput struct {
	Found      bool                       `json:"found"`
	Rounded    *domain.RoundedSuggestion  `json:"rounded,omitempty"`
	Statistics *domain.DurationSuggestion `json:"statistics,omitempty"`
}

// IndexDeckInput is the input schema for the index_deck tool.
type IndexDeckInput struct {
	Owner  string         `json:"owner" jsonschema:"the author of the deck"`
	ID     string         `json:"id" jsonschema:"stable identifier of the deck"`
	Slides []domain.Slide `json:"slides" jsonschema:"the full slide list of the deck"`
}

// IndexDeckOutput is the output schema for the index_deck tool.
type IndexDeckOutput struct {
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Deleted   int `json:"deleted"`
	Unchanged int `json:"unchanged"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "suggest_duration",
		Description: "Suggest a duration in minutes for a slide from the author's previously timed slides",
	}, s.handleSuggest)

	if s.ports.Indexer == nil {
		return
	}
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "index_deck",
		Description: "Index or re-index a deck so its timed slides inform future suggestions",
	}, s.handleIndexDeck)
}

// handleSuggest handles the suggest_duration tool invocation.
func (s *Server) handleSuggest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SuggestInput,
) (*mcp.CallToolResult, SuggestOutput, error) {
	if err := s.checkLimit(input.Owner); err != nil {
		return nil, SuggestOutput{}, err
	}

	content := input.Content
	if content == nil {
		content = []string{}
	}
	req := domain.SuggestionRequest{
		OwnerID: input.Owner,
		Title:   input.Title,
		Content: content,
	}

	suggestion, err := s.ports.Suggestion.Suggest(ctx, req)
	if err != nil {
		return nil, SuggestOutput{}, mapError(input.Owner, err)
	}
	if suggestion == nil {
		return nil, SuggestOutput{Found: false}, nil
	}

	rounded := suggestion.Rounded()
	return nil, SuggestOutput{
		Found:      true,
		Rounded:    &rounded,
		Statistics: suggestion,
	}, nil
}

// handleIndexDeck handles the index_deck tool invocation.
func (s *Server) handleIndexDeck(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IndexDeckInput,
) (*mcp.CallToolResult, IndexDeckOutput, error) {
	if err := s.checkLimit(input.Owner); err != nil {
		return nil, IndexDeckOutput{}, err
	}

	doc := domain.SourceDocument{
		ID:      input.ID,
		OwnerID: input.Owner,
		Slides:  input.Slides,
	}
	stats, err := s.ports.Indexer.Reindex(ctx, doc)
	if err != nil {
		return nil, IndexDeckOutput{}, mapError(input.Owner, err)
	}

	return nil, IndexDeckOutput{
		Inserted:  stats.Inserted,
		Updated:   stats.Updated,
		Deleted:   stats.Deleted,
		Unchanged: stats.Unchanged,
	}, nil
}

// checkLimit consumes one request from the owner's budget.
func (s *Server) checkLimit(owner string) error {
	if s.limiter.allow(owner) {
		return nil
	}
	return fmt.Errorf("%w for owner %q", ErrRateLimited, owner)
}

// mapError turns core errors into caller-facing tool errors.
func mapError(owner string, err error) error {
	switch {
	case errors.Is(err, domain.ErrUnknownOwner):
		return fmt.Errorf("%w: %q", ErrNotAuthorised, owner)
	case errors.Is(err, domain.ErrOwnerMismatch):
		return fmt.Errorf("%w: %v", ErrNotAuthorised, err)
	default:
		return err
	}
}
