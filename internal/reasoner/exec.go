package reasoner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/weftlabs/weft/internal/engine"
	"github.com/weftlabs/weft/internal/ir"
)

// Exec runs an external reasoner process per tick.
//
// Protocol: the tick's full view is written to the process's stdin in
// the line-quads format; the process writes its recommendations to
// stdout in the same format and exits 0. Anything on stderr is logged.
// A non-zero exit, malformed output, or the timeout elapsing aborts the
// tick with a ReasonerError.
//
// The process is trusted to be monotonic but not relied on: output quads
// that are not wf:shouldFire advisories are dropped here, so a misbehaved
// reasoner cannot smuggle graph writes past the mutator.
type Exec struct {
	command []string
	timeout time.Duration
	logger  *slog.Logger
}

// NewExec builds a subprocess adapter. Timeout zero means no deadline
// beyond the caller's context.
func NewExec(command []string, timeout time.Duration, logger *slog.Logger) (*Exec, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("reasoner: empty command")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Exec{command: command, timeout: timeout, logger: logger}, nil
}

func (e *Exec) Infer(ctx context.Context, view *engine.View, rules ir.RuleSet) ([]ir.Quad, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.command[0], e.command[1:]...)
	cmd.Stdin = strings.NewReader(ir.FormatLineQuads(view.Quads()))
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	if stderr.Len() > 0 {
		e.logger.Warn("reasoner stderr", "output", strings.TrimSpace(stderr.String()))
	}
	if err != nil {
		timedOut := errors.Is(ctx.Err(), context.DeadlineExceeded)
		return nil, &engine.ReasonerError{
			Op:       e.command[0],
			TimedOut: timedOut,
			Err:      err,
		}
	}
	e.logger.Debug("reasoner completed",
		"command", e.command[0],
		"duration", time.Since(start))

	quads, err := ir.ParseLineQuads(&stdout)
	if err != nil {
		return nil, &engine.ReasonerError{Op: e.command[0], Err: err}
	}

	var advisories []ir.Quad
	for _, q := range quads {
		if q.Predicate == ir.PredShouldFire {
			advisories = append(advisories, q)
		} else {
			e.logger.Warn("reasoner emitted non-advisory quad, dropping",
				"subject", q.Subject, "predicate", q.Predicate)
		}
	}
	return ir.DedupeQuads(advisories), nil
}
