package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/docent-labs/docent-cli/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for docent resources.
	uriScheme = "docent://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing chats.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "chats",
		Name:        "chats",
		Description: "List of all chat sessions",
		MIMEType:    "application/json",
	}, s.handleChatsResource)

	// Template for a chat transcript.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "chats/{chatId}",
		Name:        "chat-transcript",
		Description: "Messages of a specific chat session",
		MIMEType:    "application/json",
	}, s.handleChatTranscriptResource)

	// Template for per-channel file listings.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "files/{channel}",
		Name:        "channel-files",
		Description: "Files known to a specific channel",
		MIMEType:    "application/json",
	}, s.handleFilesResource)
}

// handleChatsResource returns a list of all chats.
func (s *Server) handleChatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Chat == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	chats, err := s.ports.Chat.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing chats: %w", err)
	}

	// Build simplified chat list.
	type chatInfo struct {
		ID       string   `json:"id"`
		Title    string   `json:"title"`
		Channels []string `json:"channels"`
		Updated  string   `json:"updated_at"`
	}

	infos := make([]chatInfo, len(chats))
	for i := range chats {
		channels := make([]string, len(chats[i].Channels))
		for j, ch := range chats[i].Channels {
			channels[j] = ch.String()
		}
		infos[i] = chatInfo{
			ID:       chats[i].ID,
			Title:    chats[i].Title,
			Channels: channels,
			Updated:  chats[i].UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling chats: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleChatTranscriptResource returns the messages of a specific chat.
func (s *Server) handleChatTranscriptResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Chat == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract chatId from URI: docent://chats/{chatId}
	chatID := extractChatID(req.Params.URI)
	if chatID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	chat, err := s.ports.Chat.Get(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("getting chat: %w", err)
	}

	// Build simplified transcript.
	type messageInfo struct {
		ID      string `json:"id"`
		Role    string `json:"role"`
		Content string `json:"content"`
		Error   string `json:"error,omitempty"`
	}

	infos := make([]messageInfo, len(chat.Messages))
	for i := range chat.Messages {
		infos[i] = messageInfo{
			ID:      chat.Messages[i].ID,
			Role:    string(chat.Messages[i].Role),
			Content: chat.Messages[i].Content,
			Error:   chat.Messages[i].Err,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling transcript: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleFilesResource returns the files known to a specific channel.
func (s *Server) handleFilesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.File == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract channel from URI: docent://files/{channel}
	channel := extractChannel(req.Params.URI)
	if !channel.IsValid() {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	files, err := s.ports.File.List(ctx, channel)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}

	// Build simplified file list.
	type fileInfo struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Path string `json:"path"`
	}

	infos := make([]fileInfo, len(files))
	for i, f := range files {
		infos[i] = fileInfo{
			ID:   f.ID,
			Name: f.Name,
			Path: f.Path,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling files: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractChatID extracts the chat ID from a URI like docent://chats/{chatId}.
func extractChatID(uri string) string {
	const prefix = uriScheme + "chats/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}

// extractChannel extracts the channel from a URI like docent://files/{channel}.
func extractChannel(uri string) domain.Channel {
	const prefix = uriScheme + "files/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return domain.Channel(strings.TrimPrefix(uri, prefix))
}
