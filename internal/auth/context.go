package auth

import "context"

// Viewer is who a request acts as: exactly one of Anonymous or Authenticated.
type Viewer interface {
	viewer()
}

// Anonymous is a request without a valid token.
type Anonymous struct{}

// Authenticated is a request carrying a verified identity.
type Authenticated struct {
	Identity Identity
}

func (Anonymous) viewer()     {}
func (Authenticated) viewer() {}

type ctxKey string

const viewerCtxKey = ctxKey("viewer")

// WithViewer returns a copy of ctx carrying v.
func WithViewer(ctx context.Context, v Viewer) context.Context {
	return context.WithValue(ctx, viewerCtxKey, v)
}

// ViewerFrom returns the request's viewer. Contexts that never passed through the
// auth middleware are Anonymous.
func ViewerFrom(ctx context.Context) Viewer {
	if v, ok := ctx.Value(viewerCtxKey).(Viewer); ok && v != nil {
		return v
	}
	return Anonymous{}
}

// IdentityFrom returns the authenticated identity, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	switch v := ViewerFrom(ctx).(type) {
	case Authenticated:
		return v.Identity, true
	default:
		return Identity{}, false
	}
}
