package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for pacer resources.
	uriScheme = "pacer://"
)

// settingsInfo is the public view of the active settings.
type settingsInfo struct {
	TitleThreshold   float64 `json:"title_threshold"`
	ContentThreshold float64 `json:"content_threshold"`
	RateLimit        float64 `json:"rate_limit"`
	Burst            int     `json:"burst"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "settings",
		Name:        "settings",
		Description: "Similarity thresholds and request limits in effect",
		MIMEType:    "application/json",
	}, s.handleSettingsResource)
}

// handleSettingsResource returns the thresholds used for matching.
func (s *Server) handleSettingsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Settings == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	settings, err := s.ports.Settings.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	limits := s.ports.limits()
	info := settingsInfo{
		TitleThreshold:   settings.Suggestion.TitleThreshold,
		ContentThreshold: settings.Suggestion.ContentThreshold,
		RateLimit:        limits.RateLimit,
		Burst:            limits.Burst,
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling settings: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
