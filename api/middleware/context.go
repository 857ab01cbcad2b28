package middleware

import "context"

type ctxKey int

const (
	identityKey ctxKey = iota
	cartKey
)

// identity is the signed-in admin; AccessID is the JWT jti that keys the
// session.
type identity struct {
	UserID   string
	AccessID string
	Email    string
}

func WithIdentity(ctx context.Context, userID, accessID, email string) context.Context {
	return context.WithValue(ctx, identityKey, identity{UserID: userID, AccessID: accessID, Email: email})
}

func identityFrom(ctx context.Context) identity {
	if ctx == nil {
		return identity{}
	}
	id, _ := ctx.Value(identityKey).(identity)
	return id
}

func UserIDFromContext(ctx context.Context) string   { return identityFrom(ctx).UserID }
func AccessIDFromContext(ctx context.Context) string { return identityFrom(ctx).AccessID }
func EmailFromContext(ctx context.Context) string    { return identityFrom(ctx).Email }

// WithCartID stores the shopper's cart id, as resolved by CartID.
func WithCartID(ctx context.Context, cartID string) context.Context {
	return context.WithValue(ctx, cartKey, cartID)
}

func CartIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(cartKey).(string)
	return id
}
