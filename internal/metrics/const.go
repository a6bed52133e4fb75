package metrics

const Namespace = "archsite"

const (
	ExpirationResultValid       = "valid"
	ExpirationResultExpiring    = "expiring"
	ExpirationResultExpired     = "expired"
	ExpirationResultUndecodable = "undecodable"
)

const (
	HandshakeOutcomeSuccess   = "success"
	HandshakeOutcomeProvider  = "provider_error"
	HandshakeOutcomeRejected  = "rejected"
	HandshakeOutcomeTimeout   = "timeout"
	HandshakeOutcomeCancelled = "cancelled"
	HandshakeOutcomeFailed    = "failed"
)

const (
	PreferenceStoreRedis  = "redis"
	PreferenceStoreMemory = "memory"
)
