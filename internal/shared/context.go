package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// PrincipalFromContext returns the signed-in user id and role assignment.
// Both are empty for anonymous requests.
func PrincipalFromContext(ctx context.Context) (userID, assignment string) {
	sess := SessionFromContext(ctx)
	return sess.User(), sess.Role()
}
