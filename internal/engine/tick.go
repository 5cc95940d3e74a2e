package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/weftlabs/weft/internal/ir"
)

// TickState names the orchestrator's position in the tick pipeline.
// Transitions are strictly forward; any failure short-circuits to
// RolledBack.
type TickState string

const (
	StateIdle                 TickState = "Idle"
	StateSnapshotTaken        TickState = "SnapshotTaken"
	StatePreconditionChecked  TickState = "PreconditionChecked"
	StateInferred             TickState = "Inferred"
	StateMutated              TickState = "Mutated"
	StatePostconditionChecked TickState = "PostconditionChecked"
	StateCommitted            TickState = "Committed"
	StateRolledBack           TickState = "RolledBack"
)

// Mutator is the step that turns recommendations into a net delta.
// StateMutator is the production implementation.
type Mutator interface {
	Mutate(view *View, recommendations []ir.Quad) (ir.QuadDelta, error)
}

// Orchestrator drives one tick end to end:
//
//	snapshot -> precondition -> infer -> mutate -> postcondition -> commit
//
// The post-state is validated in memory before anything touches the
// store, so a violating delta is rolled back without the store ever
// holding invalid state. A rolled-back tick still appends a
// non-advancing receipt.
type Orchestrator struct {
	txn       *TransactionManager
	validator *WorkflowValidator
	reasoner  Reasoner
	mutator   Mutator
	catalog   Catalog
	clock     *TickClock
	logger    *slog.Logger
}

func NewOrchestrator(txn *TransactionManager, validator *WorkflowValidator, reasoner Reasoner, mutator Mutator, catalog Catalog, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		txn:       txn,
		validator: validator,
		reasoner:  reasoner,
		mutator:   mutator,
		catalog:   catalog,
		clock:     NewTickClock(),
		logger:    logger,
	}
}

// Clock exposes the orchestrator's tick counter, mainly for tests and
// status reporting.
func (o *Orchestrator) Clock() *TickClock { return o.clock }

// Tick executes one full tick. A nil error with Committed=false means the
// tick was cleanly rolled back (postcondition violations); a non-nil
// error means the pipeline itself failed and, for transaction errors, the
// engine instance must stop.
func (o *Orchestrator) Tick(ctx context.Context) (ir.TickOutcome, error) {
	tick := int(o.clock.Next())
	start := time.Now()
	state := StateIdle
	log := o.logger.With("tick", tick)

	snap, err := o.txn.Begin(ctx)
	if err != nil {
		return ir.TickOutcome{}, err
	}
	state = StateSnapshotTaken
	log.Debug("snapshot taken", "quads", len(snap.Quads))

	txctx, err := o.txn.NewContext(ctx)
	if err != nil {
		o.txn.release()
		return ir.TickOutcome{}, err
	}

	view := snap.View()

	pre := o.validator.Validate(view)
	if !pre.Conforms {
		log.Warn("precondition failed", "violations", len(pre.Violations))
		return o.rollback(ctx, snap, txctx, tick, start, pre.Violations, state)
	}
	state = StatePreconditionChecked

	recommendations, err := o.reasoner.Infer(ctx, view, o.rules())
	if err != nil {
		if _, rbErr := o.txn.Rollback(ctx, snap, txctx); rbErr != nil {
			log.Error("rollback after reasoner failure also failed", "error", rbErr)
		}
		return ir.TickOutcome{}, err
	}
	state = StateInferred
	log.Debug("inference complete", "recommendations", len(recommendations))

	delta, err := o.mutator.Mutate(view, recommendations)
	if err != nil {
		if _, rbErr := o.txn.Rollback(ctx, snap, txctx); rbErr != nil {
			log.Error("rollback after mutation failure also failed", "error", rbErr)
		}
		return ir.TickOutcome{}, err
	}
	state = StateMutated

	post := view.Clone()
	post.Apply(delta)
	postResult := o.validator.Validate(post)
	if !postResult.Conforms {
		log.Warn("postcondition failed", "violations", len(postResult.Violations))
		return o.rollback(ctx, snap, txctx, tick, start, postResult.Violations, state)
	}
	state = StatePostconditionChecked

	receipt, err := o.txn.Commit(ctx, snap, delta, txctx)
	if err != nil {
		return ir.TickOutcome{}, err
	}
	state = StateCommitted

	outcome := ir.TickOutcome{
		TickNumber: tick,
		Delta:      delta.Size(),
		Duration:   time.Since(start),
		Converged:  delta.Empty(),
		Committed:  true,
		Receipt:    receipt,
	}
	log.Info("tick committed",
		"state", string(state),
		"delta", outcome.Delta,
		"converged", outcome.Converged,
		"tx", receipt.TxID)
	return outcome, nil
}

func (o *Orchestrator) rollback(ctx context.Context, snap *Snapshot, txctx ir.TransactionContext, tick int, start time.Time, violations []ir.Violation, from TickState) (ir.TickOutcome, error) {
	receipt, err := o.txn.Rollback(ctx, snap, txctx)
	if err != nil {
		return ir.TickOutcome{}, err
	}
	o.logger.Info("tick rolled back",
		"tick", tick,
		"from", string(from),
		"violations", len(violations),
		"tx", receipt.TxID)
	return ir.TickOutcome{
		TickNumber: tick,
		Delta:      0,
		Duration:   time.Since(start),
		Converged:  false,
		Committed:  false,
		Violations: violations,
		Receipt:    receipt,
	}, nil
}

func (o *Orchestrator) rules() ir.RuleSet {
	if o.catalog == nil {
		return ir.RuleSet{}
	}
	return o.catalog.Rules()
}
