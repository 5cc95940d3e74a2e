package ir

import "fmt"

// Verb is one of the five primitive graph rewrites. All 43 workflow
// control patterns are expressed as one of these verbs plus parameters;
// the kernel never branches on pattern identity.
type Verb string

const (
	// VerbTransmute moves a single token: remove-token-here, add-token-there.
	// Sequence, XOR-merge.
	VerbTransmute Verb = "transmute"

	// VerbCopy replicates tokens to N successors. AND-split, multi-instance.
	VerbCopy Verb = "copy"

	// VerbFilter selects a subset of candidates. XOR/OR-split, deferred
	// choice, loops.
	VerbFilter Verb = "filter"

	// VerbAwait implements join semantics with a firing threshold.
	// AND/OR-join, discriminators, partial joins, milestones.
	VerbAwait Verb = "await"

	// VerbVoid is non-monotonic cancellation: the only verb permitted to
	// remove facts created outside the current tick.
	VerbVoid Verb = "void"
)

// ParseVerb validates a verb literal.
func ParseVerb(s string) (Verb, error) {
	switch Verb(s) {
	case VerbTransmute, VerbCopy, VerbFilter, VerbAwait, VerbVoid:
		return Verb(s), nil
	default:
		return "", fmt.Errorf("unknown verb %q", s)
	}
}

// Cardinality values for Copy.
const (
	CardinalityTopology    = "topology"    // all structural successors
	CardinalityStatic      = "static"      // fixed count from Count
	CardinalityDynamic     = "dynamic"     // data-driven count (wf:instances)
	CardinalityIncremental = "incremental" // one additional instance per firing
)

// Selection modes for Filter.
const (
	SelectExactlyOne = "exactlyOne"
	SelectOneOrMore  = "oneOrMore"
	SelectDeferred   = "deferred"
	SelectMutex      = "mutex"
	SelectWhileTrue  = "whileTrue"
	SelectUntilTrue  = "untilTrue"
)

// Threshold values for Await. A decimal literal means static-N.
const (
	ThresholdAll     = "all"
	ThresholdOne     = "one"
	ThresholdDynamic = "dynamic"
)

// Completion strategies for Await.
const (
	CompleteWaitAll       = "waitAll"
	CompleteWaitFirst     = "waitFirst"
	CompleteWaitQuorum    = "waitQuorum"
	CompleteWaitMilestone = "waitMilestone"
)

// Cancellation scopes for Void.
const (
	ScopeSelf      = "self"
	ScopeCase      = "case"
	ScopeRegion    = "region"
	ScopeInstances = "instances"
)

// Params is the uniform parameter bag interpreted by the verb executors.
// Zero values mean "not applicable to this verb".
type Params struct {
	Cardinality        string `json:"cardinality,omitempty"`
	Count              int64  `json:"count,omitempty"` // static cardinality / threshold N
	SelectionMode      string `json:"selection_mode,omitempty"`
	CompletionStrategy string `json:"completion_strategy,omitempty"`
	Threshold          string `json:"threshold,omitempty"`
	CancellationScope  string `json:"cancellation_scope,omitempty"`
	ResetOnFire        bool   `json:"reset_on_fire,omitempty"`
}

// VerbSpec is one catalog entry: the verb and parameter set governing a
// node's behavior, plus its execution and removal rewrite templates.
//
// Immutable: loaded once from the catalog, never mutated at runtime. Two
// lookups with identical keys must return bit-identical specs.
type VerbSpec struct {
	PatternID string   `json:"pattern_id"`
	Name      string   `json:"name"` // human-readable pattern name
	NodeType  string   `json:"node_type"`
	SplitType string   `json:"split_type"`
	JoinType  string   `json:"join_type"`
	Verb      Verb     `json:"verb"`
	Params    Params   `json:"params"`
	Exec      Template `json:"exec"`
	Removal   Template `json:"removal"`
}

// Key returns the catalog lookup key for this spec.
func (s VerbSpec) Key() SpecKey {
	return SpecKey{
		NodeType:  s.NodeType,
		SplitType: s.SplitType,
		JoinType:  s.JoinType,
		PatternID: s.PatternID,
	}
}

// SpecKey identifies a catalog entry. Lookup is a pure function of this
// key: same key, same spec, always.
type SpecKey struct {
	NodeType  string
	SplitType string
	JoinType  string
	PatternID string
}

func (k SpecKey) String() string {
	return fmt.Sprintf("(%s,%s,%s,%s)", k.NodeType, k.SplitType, k.JoinType, k.PatternID)
}
