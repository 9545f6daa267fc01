package graphql

import "context"

type contextKey string

const ctxKeyProfile contextKey = "profile"

// WithProfile attaches the visitor profile id to ctx.
func WithProfile(ctx context.Context, profile string) context.Context {
	return context.WithValue(ctx, ctxKeyProfile, profile)
}

// ProfileFromContext returns the profile id set by WithProfile.
func ProfileFromContext(ctx context.Context) (string, bool) {
	p, ok := ctx.Value(ctxKeyProfile).(string)
	return p, ok && p != ""
}
