package llm

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"
)

// ConsensusCalls is the fixed fan-out width of ExecuteWithConsensus.
const ConsensusCalls = 3

// Votable is a structured response that can be collapsed into a coarse score
// bucket (0.0, 0.5 or 1.0) for majority voting.
type Votable interface {
	Vote() float64
}

// ConsensusResult pairs the winning outcome with the votes that produced it.
// When Outcome.Success is true, Response is the decoded winning response and
// its own Vote() equals Vote; otherwise the whole group failed and Outcome is
// the first call's failure verbatim.
type ConsensusResult struct {
	Outcome  Outcome
	Response Votable
	Vote     float64
	Votes    []float64
}

// ExecuteWithConsensus issues exactly ConsensusCalls independent copies of req
// in parallel and reduces them by majority vote. Callers pin the evaluation
// model through req.Model; newOut produces a fresh decode target per call.
//
// The calls share no mutable state and finish in any order; invocation order
// (call index) only matters for the tie-break documented on majorityVote.
func (c *Client) ExecuteWithConsensus(ctx context.Context, req Request, newOut func() Votable) ConsensusResult {
	outcomes := make([]Outcome, ConsensusCalls)
	responses := make([]Votable, ConsensusCalls)

	g, gctx := errgroup.WithContext(ctx)
	for i := range outcomes {
		g.Go(func() error {
			r := req
			v := newOut()
			r.Out = v
			outcomes[i] = c.Execute(gctx, r)
			responses[i] = v
			return nil
		})
	}
	_ = g.Wait()

	return reduceConsensus(outcomes, responses)
}

// reduceConsensus collapses the gathered outcomes to one winner.
func reduceConsensus(outcomes []Outcome, responses []Votable) ConsensusResult {
	votes := make([]float64, 0, len(outcomes))
	voted := make([]int, 0, len(outcomes)) // call indexes behind votes, same order
	for i, out := range outcomes {
		if out.Success {
			votes = append(votes, responses[i].Vote())
			voted = append(voted, i)
		}
	}

	// All failed: surface the first attempt's failure, do not synthesize.
	if len(votes) == 0 {
		return ConsensusResult{Outcome: outcomes[0]}
	}

	winner := majorityVote(votes)
	log.Printf("[llm] consensus votes=%v winner=%v", votes, winner)

	for k, v := range votes {
		if v == winner {
			i := voted[k]
			return ConsensusResult{
				Outcome:  outcomes[i],
				Response: responses[i],
				Vote:     winner,
				Votes:    votes,
			}
		}
	}

	// Unreachable: winner always appears in votes.
	i := voted[0]
	return ConsensusResult{Outcome: outcomes[i], Response: responses[i], Vote: votes[0], Votes: votes}
}

// majorityVote returns the bucket with the highest count. Ties go to the
// bucket whose first occurrence appears earliest in invocation order.
func majorityVote(votes []float64) float64 {
	counts := make(map[float64]int, len(votes))
	for _, v := range votes {
		counts[v]++
	}
	best := 0
	for _, n := range counts {
		if n > best {
			best = n
		}
	}
	for _, v := range votes {
		if counts[v] == best {
			return v
		}
	}
	return 0
}
