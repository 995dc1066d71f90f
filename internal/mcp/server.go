package mcp

import (
	"context"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/matheus3301/msgarchive/internal/api"
)

// Archive is the daemon surface the tools read from. *client.Client
// satisfies it.
type Archive interface {
	Status(ctx context.Context) (*api.Status, error)
	ListChats(ctx context.Context, limit int) ([]api.Chat, error)
	GetChat(ctx context.Context, id string) (*api.Chat, error)
	ListMessages(ctx context.Context, q api.MessageQuery) ([]api.Message, error)
	SearchMessages(ctx context.Context, q api.MessageQuery) ([]api.Message, error)
	GetMessage(ctx context.Context, id string) (*api.Message, error)
	ListAttachments(ctx context.Context, q api.AttachmentQuery) ([]api.Attachment, error)
	GetAttachment(ctx context.Context, id string) (*api.Attachment, error)
}

// Server exposes the message archive as MCP tools.
type Server struct {
	archive Archive
	version string
	server  *gomcp.Server
}

// Option configures the MCP server.
type Option func(*Server)

// WithVersion sets the server version string.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// NewServer creates an MCP server backed by archive.
func NewServer(archive Archive, opts ...Option) *Server {
	s := &Server{archive: archive, version: "dev"}
	for _, opt := range opts {
		opt(s)
	}
	s.server = gomcp.NewServer(&gomcp.Implementation{
		Name:    "msgarchive",
		Version: s.version,
	}, nil)
	s.registerTools()
	return s
}

// Run serves MCP on stdin/stdout until the client disconnects or ctx is
// canceled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "archive_status",
		Description: "Report whether the message archive is readable, and why not if it is not",
	}, s.handleStatus)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_chats",
		Description: "List conversations with participants and their latest message, most recently active first",
	}, s.handleListChats)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_chat",
		Description: "Get one conversation by id",
	}, s.handleGetChat)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_messages",
		Description: "List messages newest first, optionally filtered by chat, contact name, time window, direction or text",
	}, s.handleListMessages)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "search_messages",
		Description: "Search message text (case-insensitive substring); accepts the same filters as list_messages and requires query",
	}, s.handleSearchMessages)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_message",
		Description: "Get one message by id",
	}, s.handleGetMessage)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_attachments",
		Description: "List file attachments of a message or a chat with their paths on disk",
	}, s.handleListAttachments)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_attachment",
		Description: "Get one attachment by id",
	}, s.handleGetAttachment)
}
