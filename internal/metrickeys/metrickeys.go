package metrickeys

const (
	Prefix = "resume."

	// Decisions
	Decision         = Prefix + "decision"
	DecisionDuration = Prefix + "decision.duration"

	// Engine calls
	EngineCall      = Prefix + "engine.call"
	EngineCallError = Prefix + "engine.call.error"

	// Attribute store
	StoreCacheSize     = Prefix + "store.cache.size"
	StoreCacheEviction = Prefix + "store.cache.eviction"
	StoreCacheHit      = Prefix + "store.cache.hit"

	// Reconciler
	ReconcileAttempt = Prefix + "reconcile.attempt"
)

// Tag names
const (
	// Backend being used
	Backend = "backend"

	// Status reported by a decision
	Status = "status"

	// Action taken by a decision
	Action = "action"

	// Engine operation
	Operation = "operation"

	// Reason for evicting an entry from the store cache
	EvictionReason = "reason"
)
