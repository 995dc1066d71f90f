package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matheus3301/msgarchive/internal/contacts"
	"github.com/matheus3301/msgarchive/internal/status"
	"github.com/matheus3301/msgarchive/internal/store"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Archive is the read surface of store.DB used by the service.
type Archive interface {
	Path() string
	ListChats(ctx context.Context, limit int) ([]store.Chat, error)
	GetChat(ctx context.Context, id int64) (*store.Chat, error)
	ListMessages(ctx context.Context, f store.MessageFilter) ([]store.Message, error)
	SearchMessages(ctx context.Context, f store.MessageFilter) ([]store.Message, error)
	GetMessage(ctx context.Context, id int64) (*store.Message, error)
	ListAttachments(ctx context.Context, f store.AttachmentFilter) ([]store.Attachment, error)
	GetAttachment(ctx context.Context, id int64) (*store.Attachment, error)
}

// Cursor reports the newest message row id seen by the daemon.
type Cursor interface {
	Latest() int64
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithCursor makes GetStatus report c's latest message id.
func WithCursor(c Cursor) ServiceOption {
	return func(s *Service) { s.cursor = c }
}

// Service implements ArchiveServer on top of the archive store.
type Service struct {
	profile   string
	startedAt time.Time
	db        Archive
	machine   *status.Machine
	cursor    Cursor
	logger    *zap.Logger
}

// NewService creates the archive service.
func NewService(profile string, db Archive, machine *status.Machine, logger *zap.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		profile:   profile,
		startedAt: time.Now(),
		db:        db,
		machine:   machine,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ArchiveServer = (*Service)(nil)

func (s *Service) GetStatus(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	snap := s.machine.Snapshot()
	st := Status{
		Profile:     s.profile,
		State:       string(snap.State),
		Detail:      snap.Detail,
		Since:       FormatTime(snap.Since),
		UptimeMs:    time.Since(s.startedAt).Milliseconds(),
		ArchivePath: s.db.Path(),
	}
	if s.cursor != nil {
		st.LatestMessageID = formatID(s.cursor.Latest())
	}
	return Encode(st)
}

func (s *Service) ListChats(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req ListChatsRequest
	if err := Decode(in, &req); err != nil {
		return nil, grpcstatus.Error(codes.InvalidArgument, err.Error())
	}
	chats, err := s.db.ListChats(ctx, req.Limit)
	if err != nil {
		return nil, s.toStatus("list chats", err)
	}
	out := ChatList{Chats: make([]Chat, 0, len(chats))}
	for i := range chats {
		out.Chats = append(out.Chats, chatToWire(&chats[i]))
	}
	return Encode(out)
}

func (s *Service) GetChat(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, ok, err := decodeID(in)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, grpcstatus.Errorf(codes.NotFound, "chat not found")
	}
	c, err := s.db.GetChat(ctx, id)
	if err != nil {
		return nil, s.toStatus("get chat", err)
	}
	if c == nil {
		return nil, grpcstatus.Errorf(codes.NotFound, "chat %d not found", id)
	}
	return Encode(ChatReply{Chat: chatToWire(c)})
}

func (s *Service) ListMessages(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	f, err := decodeMessageQuery(in)
	if err != nil {
		return nil, err
	}
	msgs, err := s.db.ListMessages(ctx, f)
	if err != nil {
		return nil, s.toStatus("list messages", err)
	}
	return encodeMessages(msgs)
}

func (s *Service) SearchMessages(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	f, err := decodeMessageQuery(in)
	if err != nil {
		return nil, err
	}
	msgs, err := s.db.SearchMessages(ctx, f)
	if err != nil {
		return nil, s.toStatus("search messages", err)
	}
	return encodeMessages(msgs)
}

func (s *Service) GetMessage(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, ok, err := decodeID(in)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, grpcstatus.Errorf(codes.NotFound, "message not found")
	}
	m, err := s.db.GetMessage(ctx, id)
	if err != nil {
		return nil, s.toStatus("get message", err)
	}
	if m == nil {
		return nil, grpcstatus.Errorf(codes.NotFound, "message %d not found", id)
	}
	return Encode(MessageReply{Message: messageToWire(m)})
}

func (s *Service) ListAttachments(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req AttachmentQuery
	if err := Decode(in, &req); err != nil {
		return nil, grpcstatus.Error(codes.InvalidArgument, err.Error())
	}
	var (
		f   = store.AttachmentFilter{Limit: req.Limit}
		err error
	)
	if f.MessageID, err = filterID("messageId", req.MessageID); err != nil {
		return nil, err
	}
	if f.ChatID, err = filterID("chatId", req.ChatID); err != nil {
		return nil, err
	}
	atts, err := s.db.ListAttachments(ctx, f)
	if err != nil {
		return nil, s.toStatus("list attachments", err)
	}
	out := AttachmentList{Attachments: make([]Attachment, 0, len(atts))}
	for i := range atts {
		out.Attachments = append(out.Attachments, attachmentToWire(&atts[i]))
	}
	return Encode(out)
}

func (s *Service) GetAttachment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, ok, err := decodeID(in)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, grpcstatus.Errorf(codes.NotFound, "attachment not found")
	}
	a, err := s.db.GetAttachment(ctx, id)
	if err != nil {
		return nil, s.toStatus("get attachment", err)
	}
	if a == nil {
		return nil, grpcstatus.Errorf(codes.NotFound, "attachment %d not found", id)
	}
	return Encode(AttachmentReply{Attachment: attachmentToWire(a)})
}

// toStatus maps store errors to gRPC codes. Access failures also move the
// daemon into ACCESS_DENIED so GetStatus reports them.
func (s *Service) toStatus(op string, err error) error {
	switch {
	case store.IsAccessDenied(err):
		if tErr := s.machine.Transition(status.AccessDenied, err.Error()); tErr != nil {
			s.logger.Warn("status transition failed", zap.Error(tErr))
		}
		return grpcstatus.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, store.ErrEmptyQuery), errors.Is(err, contacts.ErrEmptyQuery):
		return grpcstatus.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, store.ErrNoContactResolver):
		return grpcstatus.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, store.ErrClosed):
		return grpcstatus.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return grpcstatus.FromContextError(err).Err()
	}
	s.logger.Error(op+" failed", zap.Error(err))
	return grpcstatus.Errorf(codes.Internal, "%s: %v", op, err)
}

// decodeID reads the id of a get request. A malformed id cannot name an
// existing record, so it reports ok=false rather than an error.
func decodeID(in *structpb.Struct) (int64, bool, error) {
	var req GetRequest
	if err := Decode(in, &req); err != nil {
		return 0, false, grpcstatus.Error(codes.InvalidArgument, err.Error())
	}
	id, err := store.ParseID(req.ID)
	if err != nil {
		return 0, false, nil
	}
	return id, true, nil
}

func filterID(field, v string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	id, err := store.ParseID(v)
	if err != nil {
		return 0, grpcstatus.Errorf(codes.InvalidArgument, "%s: %v", field, err)
	}
	return id, nil
}

func filterTime(field, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := store.ParseTimestamp(v)
	if err != nil {
		return time.Time{}, grpcstatus.Errorf(codes.InvalidArgument, "%s: %v", field, err)
	}
	return t, nil
}

func decodeMessageQuery(in *structpb.Struct) (store.MessageFilter, error) {
	var req MessageQuery
	if err := Decode(in, &req); err != nil {
		return store.MessageFilter{}, grpcstatus.Error(codes.InvalidArgument, err.Error())
	}
	f := store.MessageFilter{
		ContactName: req.Contact,
		FromMe:      req.FromMe,
		Query:       req.Query,
		Limit:       req.Limit,
	}
	var err error
	if f.ChatID, err = filterID("chatId", req.ChatID); err != nil {
		return f, err
	}
	if f.After, err = filterTime("after", req.After); err != nil {
		return f, err
	}
	if f.Before, err = filterTime("before", req.Before); err != nil {
		return f, err
	}
	if !f.After.IsZero() && !f.Before.IsZero() && !f.After.Before(f.Before) {
		return f, grpcstatus.Error(codes.InvalidArgument, fmt.Sprintf("after (%s) must be earlier than before (%s)", req.After, req.Before))
	}
	return f, nil
}

func encodeMessages(msgs []store.Message) (*structpb.Struct, error) {
	out := MessageList{Messages: make([]Message, 0, len(msgs))}
	for i := range msgs {
		out.Messages = append(out.Messages, messageToWire(&msgs[i]))
	}
	return Encode(out)
}
