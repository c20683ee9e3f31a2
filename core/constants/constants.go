package constants

import "time"

const (
	// Context keys
	ContextTokenData = "token_data"

	// Token scopes
	ScopeTokenAccess  = "access"
	ScopeTokenRefresh = "refresh"

	// Viewer roles carried in the token
	RoleStudent  = "student"
	RoleLecturer = "lecturer"
	RoleAdmin    = "admin"

	// Redis key prefixes
	RedisKeyRegistrationCache = "registration:cache:"
	RedisKeyNotifications     = "notifications:"

	// Timeouts
	DefaultTimeout         = 10 * time.Second
	UpstreamClientTimeout  = 30 * time.Second
	DefaultMutationTimeout = 30 * time.Second

	// Merged-timeline display identity: EVENT-sourced ids carry this prefix
	// so they can never collide with SCHEDULE ids.
	EventIDPrefix = "event-"

	// Display colors per timeline source
	ColorSchedule = "#2563eb"
	ColorEvent    = "#16a34a"
)
