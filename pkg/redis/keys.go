package redis

import "strings"

const (
	keyNamespace      = "vv"
	idempotencyPrefix = "idempotency"
	rateLimitPrefix   = "rate_limit"
	sessionPrefix     = "session"
	changeFeedPrefix  = "changefeed"
)

// IdempotencyKey namespaces a client-supplied Idempotency-Key under its scope.
func (c *Client) IdempotencyKey(scope, id string) string {
	return joinKey(idempotencyPrefix, scope, id)
}

// RateLimitKey namespaces a fixed-window counter.
func (c *Client) RateLimitKey(scope string) string {
	return joinKey(rateLimitPrefix, scope)
}

// AccessSessionKey is where the refresh token for an access id lives.
func (c *Client) AccessSessionKey(accessID string) string {
	return joinKey(sessionPrefix, "access", accessID)
}

// ChangeFeedChannel is the pub/sub channel for one collection.
func (c *Client) ChangeFeedChannel(collection string) string {
	return joinKey(changeFeedPrefix, collection)
}

// joinKey prefixes parts with the namespace, dropping blanks.
func joinKey(parts ...string) string {
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
