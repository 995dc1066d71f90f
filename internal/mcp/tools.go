package mcp

import (
	"context"
	"fmt"
	"strings"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	grpcstatus "google.golang.org/grpc/status"

	"github.com/matheus3301/msgarchive/internal/api"
)

// toolError turns daemon errors into a message fit for the model: the
// status description without the RPC framing.
func toolError(op string, err error) error {
	if st, ok := grpcstatus.FromError(err); ok {
		return fmt.Errorf("%s: %s", op, st.Message())
	}
	return fmt.Errorf("%s: %w", op, err)
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("'id' is required")
	}
	return nil
}

func (s *Server) handleStatus(ctx context.Context, _ *gomcp.CallToolRequest, _ StatusInput) (*gomcp.CallToolResult, StatusOutput, error) {
	st, err := s.archive.Status(ctx)
	if err != nil {
		return nil, StatusOutput{}, toolError("archive status", err)
	}
	return nil, StatusOutput{Status: *st}, nil
}

func (s *Server) handleListChats(ctx context.Context, _ *gomcp.CallToolRequest, input ListChatsInput) (*gomcp.CallToolResult, ChatsOutput, error) {
	chats, err := s.archive.ListChats(ctx, input.Limit)
	if err != nil {
		return nil, ChatsOutput{}, toolError("list chats", err)
	}
	return nil, ChatsOutput{Chats: chats}, nil
}

func (s *Server) handleGetChat(ctx context.Context, _ *gomcp.CallToolRequest, input GetInput) (*gomcp.CallToolResult, ChatOutput, error) {
	if err := requireID(input.ID); err != nil {
		return nil, ChatOutput{}, err
	}
	c, err := s.archive.GetChat(ctx, input.ID)
	if err != nil {
		return nil, ChatOutput{}, toolError("get chat", err)
	}
	return nil, ChatOutput{Chat: *c}, nil
}

func (s *Server) handleListMessages(ctx context.Context, _ *gomcp.CallToolRequest, input MessagesInput) (*gomcp.CallToolResult, MessagesOutput, error) {
	msgs, err := s.archive.ListMessages(ctx, input.query())
	if err != nil {
		return nil, MessagesOutput{}, toolError("list messages", err)
	}
	return nil, MessagesOutput{Messages: msgs}, nil
}

func (s *Server) handleSearchMessages(ctx context.Context, _ *gomcp.CallToolRequest, input MessagesInput) (*gomcp.CallToolResult, MessagesOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, MessagesOutput{}, fmt.Errorf("'query' is required")
	}
	msgs, err := s.archive.SearchMessages(ctx, input.query())
	if err != nil {
		return nil, MessagesOutput{}, toolError("search messages", err)
	}
	return nil, MessagesOutput{Messages: msgs}, nil
}

func (s *Server) handleGetMessage(ctx context.Context, _ *gomcp.CallToolRequest, input GetInput) (*gomcp.CallToolResult, MessageOutput, error) {
	if err := requireID(input.ID); err != nil {
		return nil, MessageOutput{}, err
	}
	m, err := s.archive.GetMessage(ctx, input.ID)
	if err != nil {
		return nil, MessageOutput{}, toolError("get message", err)
	}
	return nil, MessageOutput{Message: *m}, nil
}

func (s *Server) handleListAttachments(ctx context.Context, _ *gomcp.CallToolRequest, input AttachmentsInput) (*gomcp.CallToolResult, AttachmentsOutput, error) {
	atts, err := s.archive.ListAttachments(ctx, api.AttachmentQuery{
		MessageID: input.MessageID,
		ChatID:    input.ChatID,
		Limit:     input.Limit,
	})
	if err != nil {
		return nil, AttachmentsOutput{}, toolError("list attachments", err)
	}
	return nil, AttachmentsOutput{Attachments: atts}, nil
}

func (s *Server) handleGetAttachment(ctx context.Context, _ *gomcp.CallToolRequest, input GetInput) (*gomcp.CallToolResult, AttachmentOutput, error) {
	if err := requireID(input.ID); err != nil {
		return nil, AttachmentOutput{}, err
	}
	a, err := s.archive.GetAttachment(ctx, input.ID)
	if err != nil {
		return nil, AttachmentOutput{}, toolError("get attachment", err)
	}
	return nil, AttachmentOutput{Attachment: *a}, nil
}
