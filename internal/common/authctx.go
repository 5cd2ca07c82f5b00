package common

import "context"

type ctxKey string

const (
	apiTypeKey      ctxKey = "auth/api-type"
	sessionTokenKey ctxKey = "auth/session-token"
	channelTokenKey ctxKey = "auth/channel-token"
)

// API types a caller can authenticate as. Admin callers may trigger
// settlement; shop callers may only open payment intents.
const (
	APITypeAdmin = "admin"
	APITypeShop  = "shop"
)

// WithAPIType stores the caller's API type on the provided context.
func WithAPIType(ctx context.Context, apiType string) context.Context {
	return context.WithValue(ctx, apiTypeKey, apiType)
}

// APIType extracts the caller's API type from the context if present.
func APIType(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(apiTypeKey).(string)
	return v, ok
}

// WithSessionToken stores the caller's session token on the provided context.
func WithSessionToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, sessionTokenKey, token)
}

// SessionToken extracts the session token identifying the caller's active order.
func SessionToken(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionTokenKey).(string)
	return v, ok
}

// WithChannelToken stores the sales-channel token on the provided context.
func WithChannelToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, channelTokenKey, token)
}

// ChannelToken extracts the sales-channel token from the context if present.
func ChannelToken(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(channelTokenKey).(string)
	return v, ok
}
