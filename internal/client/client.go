package client

import (
	"context"
	"fmt"

	"github.com/matheus3301/msgarchive/internal/api"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client is a typed wrapper around the daemon's ArchiveService.
type Client struct {
	conn *grpc.ClientConn
}

// New dials the daemon's Unix domain socket. The connection is established
// lazily on the first call.
func New(socketPath string) (*Client, error) {
	conn, err := grpc.NewClient(
		"unix://"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("dial daemon: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) call(ctx context.Context, method string, req, resp any) error {
	in, err := api.Encode(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, api.FullMethod(method), in, out); err != nil {
		return err
	}
	return api.Decode(out, resp)
}

// Status returns the daemon status.
func (c *Client) Status(ctx context.Context) (*api.Status, error) {
	var out api.Status
	if err := c.call(ctx, api.MethodGetStatus, struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListChats returns up to limit chats, most recently active first.
func (c *Client) ListChats(ctx context.Context, limit int) ([]api.Chat, error) {
	var out api.ChatList
	if err := c.call(ctx, api.MethodListChats, api.ListChatsRequest{Limit: limit}, &out); err != nil {
		return nil, err
	}
	return out.Chats, nil
}

// GetChat returns one chat. A missing chat is a NotFound status error.
func (c *Client) GetChat(ctx context.Context, id string) (*api.Chat, error) {
	var out api.ChatReply
	if err := c.call(ctx, api.MethodGetChat, api.GetRequest{ID: id}, &out); err != nil {
		return nil, err
	}
	return &out.Chat, nil
}

// ListMessages returns messages matching q, newest first.
func (c *Client) ListMessages(ctx context.Context, q api.MessageQuery) ([]api.Message, error) {
	var out api.MessageList
	if err := c.call(ctx, api.MethodListMessages, q, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// SearchMessages is ListMessages with a required q.Query.
func (c *Client) SearchMessages(ctx context.Context, q api.MessageQuery) ([]api.Message, error) {
	var out api.MessageList
	if err := c.call(ctx, api.MethodSearchMessages, q, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// GetMessage returns one message.
func (c *Client) GetMessage(ctx context.Context, id string) (*api.Message, error) {
	var out api.MessageReply
	if err := c.call(ctx, api.MethodGetMessage, api.GetRequest{ID: id}, &out); err != nil {
		return nil, err
	}
	return &out.Message, nil
}

// ListAttachments returns attachments matching q.
func (c *Client) ListAttachments(ctx context.Context, q api.AttachmentQuery) ([]api.Attachment, error) {
	var out api.AttachmentList
	if err := c.call(ctx, api.MethodListAttachments, q, &out); err != nil {
		return nil, err
	}
	return out.Attachments, nil
}

// GetAttachment returns one attachment.
func (c *Client) GetAttachment(ctx context.Context, id string) (*api.Attachment, error) {
	var out api.AttachmentReply
	if err := c.call(ctx, api.MethodGetAttachment, api.GetRequest{ID: id}, &out); err != nil {
		return nil, err
	}
	return &out.Attachment, nil
}
