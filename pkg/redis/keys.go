package redis

import "strings"

// Keyspace:
//
//	its27:cart:<cart id>                 shopper cart JSON
//	its27:checkout:<cart id>             checkout attempt JSON
//	its27:lock:<scope>:<id>              short-lived mutual exclusion token
//	its27:session:access:<access id>     admin refresh session
//	its27:rate_limit:<scope>             fixed-window counter
//	its27:idempotency:<scope>:<key>      replayable response
const keyNamespace = "its27"

func (c *Client) IdempotencyKey(scope, id string) string {
	return buildKey("idempotency", scope, id)
}

func (c *Client) RateLimitKey(scope string) string {
	return buildKey("rate_limit", scope)
}

func (c *Client) AccessSessionKey(accessID string) string {
	return buildKey("session", "access", accessID)
}

func (c *Client) CartKey(cartID string) string {
	return buildKey("cart", cartID)
}

func (c *Client) CheckoutKey(cartID string) string {
	return buildKey("checkout", cartID)
}

func (c *Client) LockKey(scope, id string) string {
	return buildKey("lock", scope, id)
}

// buildKey joins non-empty parts under the namespace.
func buildKey(parts ...string) string {
	var b strings.Builder
	b.WriteString(keyNamespace)
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		b.WriteByte(':')
		b.WriteString(part)
	}
	return b.String()
}
