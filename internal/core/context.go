package core

import "context"

type contextKey string

const ctxKeyClient contextKey = "client"

// ClientInfo identifies who made a request. It is attached by the web layer
// and copied into audit events.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// ContextWithClient returns ctx carrying info.
func ContextWithClient(ctx context.Context, info ClientInfo) context.Context {
	return context.WithValue(ctx, ctxKeyClient, info)
}

// ClientFromContext returns the ClientInfo attached to ctx, or the zero value.
func ClientFromContext(ctx context.Context) ClientInfo {
	info, _ := ctx.Value(ctxKeyClient).(ClientInfo)
	return info
}
