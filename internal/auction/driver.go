// Package auction iterates eligible orders, running the per-order solver
// sequentially within a deadline and streaming partial results out through
// a single-producer/single-consumer queue.
package auction

import (
	"context"
	"time"

	"github.com/relaydex/curve-lp-solver/internal/domain"
	"github.com/relaydex/curve-lp-solver/internal/solver"
)

// deadlineSlack is the margin reserved for response transport. It is a
// fixed constant, not a tuning knob.
const deadlineSlack = 500 * time.Millisecond

// solveOrder is swapped out in tests to exercise deadline truncation
// without real oracle/RPC I/O.
var solveOrder = solver.SolveOrder

// Driver runs the per-order solve pipeline across an auction's orders.
type Driver struct {
	Config solver.Config
	Deps   solver.Deps
}

// Solve iterates auction.Orders in order, solving each eligible one on a
// background task bounded by auction.Deadline minus the deadline slack. On
// timeout the background task is abandoned and whatever solutions already
// reached the channel are returned; nothing already enqueued is lost.
func (d *Driver) Solve(ctx context.Context, a *domain.Auction) []*domain.Solution {
	remaining := time.Until(a.Deadline) - deadlineSlack
	if remaining < 0 {
		remaining = 0
	}

	ctx, cancel := context.WithTimeout(ctx, remaining)
	defer cancel()

	// Buffered to the number of orders: the background task sends at most
	// one Solution per order, so the producer can never block on a send.
	results := make(chan *domain.Solution, len(a.Orders))
	bgDone := make(chan struct{})

	go func() {
		defer close(bgDone)
		d.runSequential(ctx, a, results)
	}()

	select {
	case <-ctx.Done():
	case <-bgDone:
	}

	return drain(results)
}

func (d *Driver) runSequential(ctx context.Context, a *domain.Auction, results chan<- *domain.Solution) {
	for index, order := range a.Orders {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if !solver.Eligible(order, d.Config) {
			continue
		}

		sol, err := solveOrder(ctx, a, order, uint64(index), d.Config, d.Deps)
		if err != nil {
			solver.LogDropped(order, err)
			continue
		}

		select {
		case results <- sol:
		case <-ctx.Done():
			return
		}
	}
}

// drain non-blockingly collects whatever is currently on the channel,
// preserving emission order (monotonic id == auction index).
func drain(results chan *domain.Solution) []*domain.Solution {
	var out []*domain.Solution
	for {
		select {
		case sol := <-results:
			out = append(out, sol)
		default:
			return out
		}
	}
}
