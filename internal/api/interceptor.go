package api

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/msgarchive/internal/bus"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	grpcstatus "google.golang.org/grpc/status"
)

// RequestIDHeader carries the per-call id. A caller may set it; the server
// echoes the id it used in the response header.
const RequestIDHeader = "x-request-id"

const maxRequestIDLen = 128

// RequestInfo is the payload of bus.KindRequest events.
type RequestInfo struct {
	ID       string
	Method   string
	Code     string
	Duration time.Duration
}

type requestIDKey struct{}

// RequestID returns the id assigned to the call carried by ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// LoggingInterceptor tags each call with a request id, logs its outcome and
// publishes it on b when b is non-nil.
func LoggingInterceptor(logger *zap.Logger, b *bus.Bus) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		id := incomingRequestID(ctx)
		if id == "" {
			id = uuid.NewString()
		}
		ctx = context.WithValue(ctx, requestIDKey{}, id)
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, id))

		start := time.Now()
		resp, err := handler(ctx, req)
		elapsed := time.Since(start)
		code := grpcstatus.Code(err)

		fields := []zap.Field{
			zap.String("request_id", id),
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("duration", elapsed),
		}
		if err != nil {
			logger.Warn("request failed", append(fields, zap.Error(err))...)
		} else {
			logger.Debug("request served", fields...)
		}
		if b != nil {
			b.Publish(bus.Event{
				Kind: bus.KindRequest,
				Payload: RequestInfo{
					ID:       id,
					Method:   info.FullMethod,
					Code:     code.String(),
					Duration: elapsed,
				},
			})
		}
		return resp, err
	}
}

// incomingRequestID returns the caller's request id, or "" when it is absent
// or not a short printable ASCII token.
func incomingRequestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(RequestIDHeader)
	if len(values) == 0 {
		return ""
	}
	id := values[0]
	if id == "" || len(id) > maxRequestIDLen {
		return ""
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return ""
		}
	}
	return id
}
