package ir

// Workflow vocabulary predicates. Uses prefixed dotted notation so graph
// dumps stay readable without a namespace table.
const (
	// Structural predicates (written at load time, read-only to the engine).
	PredType    = "wf:type"    // node type: task | condition
	PredSplit   = "wf:split"   // split behavior: none | and | xor | or
	PredJoin    = "wf:join"    // join behavior: none | and | xor | or
	PredPattern = "wf:pattern" // catalog pattern id governing the node
	PredFlowsTo = "wf:flowsTo" // directed flow edge source -> target
	PredOrder   = "wf:order"   // branch priority for Filter tie-breaking
	PredRegion  = "wf:region"  // cancellation region membership

	// Runtime predicates (owned by the state mutator).
	PredStatus  = "wf:status"  // exactly one per node per case at commit
	PredOffer   = "wf:offer"   // token offered to a join node, object = source
	PredEmitted = "wf:emitted" // node has propagated to its successors

	// Advisory predicates (written only by the reasoner, consumed per tick).
	PredShouldFire = "wf:shouldFire"

	// Control predicates (written by callers to request cancellation or to
	// satisfy milestone / loop conditions).
	PredCancel    = "wf:cancelRequested"
	PredMilestone = "wf:milestone"
	PredChosen    = "wf:chosen" // environment picked this deferred branch
	PredInstances  = "wf:instances"  // dynamic cardinality / threshold source
	PredInstanceOf = "wf:instanceOf" // multi-instance child -> parent link
	PredCondition  = "wf:condition"  // loop continuation flag, object = true|false
)

// Node types.
const (
	NodeTask      = "task"
	NodeCondition = "condition"
)

// Split and join behaviors.
const (
	BehaviorNone = "none"
	BehaviorAnd  = "and"
	BehaviorXor  = "xor"
	BehaviorOr   = "or"
)

// Node statuses. Exactly one status quad per node per case instance must
// hold at any committed state (enforced by the validator).
const (
	StatusPending   = "Pending"
	StatusEnabled   = "Enabled"
	StatusActive    = "Active"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

// Advisory phases, the object of a wf:shouldFire quad. Cancel selects a
// node's removal template; every other phase selects its exec template.
const (
	PhaseOffer  = "offer"
	PhaseRun    = "run"
	PhaseEmit   = "emit"
	PhaseCancel = "cancel"
)

// ValueTrue is the literal object for boolean marker quads.
const ValueTrue = "true"

// ValidStatuses defines the allowed status literals.
var ValidStatuses = map[string]bool{
	StatusPending:   true,
	StatusEnabled:   true,
	StatusActive:    true,
	StatusCompleted: true,
	StatusCancelled: true,
}

// ValidBehaviors defines the allowed split/join behavior literals.
var ValidBehaviors = map[string]bool{
	BehaviorNone: true,
	BehaviorAnd:  true,
	BehaviorXor:  true,
	BehaviorOr:   true,
}
