package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type (
	traceDataKey   struct{}
	requestDataKey struct{}
)

// TraceData correlates log lines and error envelopes with one HTTP request.
type TraceData struct {
	TraceID   string
	RequestID string
}

// RequestData carries caller identity resolved by the HTTP layer. A nil
// OwnerUserID means the caller works in the unowned partition.
type RequestData struct {
	OwnerUserID *uuid.UUID
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// RequestID returns the request id stored on ctx, or "".
func RequestID(ctx context.Context) string {
	if td := GetTraceData(ctx); td != nil {
		return td.RequestID
	}
	return ""
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// OwnerFrom returns the owner stored on ctx, or nil.
func OwnerFrom(ctx context.Context) *uuid.UUID {
	if rd := GetRequestData(ctx); rd != nil {
		return rd.OwnerUserID
	}
	return nil
}
