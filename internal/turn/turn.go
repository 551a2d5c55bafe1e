// internal/turn/turn.go
//
// Round-based turn scheduler.
// States: RoundInProgress(n) → … → GameOver(reason).
//
// Per player turn (up to maxAttempts attempts):
//   proposal (bounded by the player's time budget) → move.Parse → rules.Validate
//   → game.Apply. Any failure skips to the next attempt or player without
//   touching the state; the failure text becomes the retry hint. Failed-attempt
//   annotations are buffered and written with the end-of-round commit.
//
// After each round: board full → BOARD_FULL; N consecutive rounds without an
// accepted move → STAGNATION; next round beyond maxRounds → ROUND_LIMIT_REACHED.
//
// A Scheduler drives one game on one goroutine; it is not safe for concurrent use.

package turn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/balda/internal/board"
	"github.com/robalobadob/balda/internal/events"
	"github.com/robalobadob/balda/internal/game"
	"github.com/robalobadob/balda/internal/move"
	"github.com/robalobadob/balda/internal/rules"
)

var (
	ErrProposalTimeout = errors.New("proposal timed out")
	ErrInternalFault   = errors.New("internal fault")
	ErrNoProposer      = errors.New("turn: no proposer for player")
	ErrNoValidator     = errors.New("turn: validator is required")
)

// Failure reasons that are not validation rejections.
const (
	ReasonMalformed      = "MALFORMED_DESCRIPTOR"
	ReasonTimeout        = "PROPOSAL_TIMEOUT"
	ReasonProposerFailed = "PROPOSAL_FAILED"
)

// Proposer supplies one descriptor line per request. It must honour ctx.
type Proposer interface {
	Propose(ctx context.Context, req Request) (string, error)
}

// ProposerFunc adapts a function to Proposer.
type ProposerFunc func(ctx context.Context, req Request) (string, error)

func (f ProposerFunc) Propose(ctx context.Context, req Request) (string, error) { return f(ctx, req) }

// Request is the read-only view handed to a proposer.
type Request struct {
	GameID     string              `json:"gameId"`
	Round      int                 `json:"round"`
	Player     string              `json:"player"`
	Attempt    int                 `json:"attempt"`
	Board      []string            `json:"board"`
	Empty      []board.Position    `json:"empty"`
	Words      []game.HistoryEntry `json:"words"`
	Scores     map[string]int      `json:"scores"`
	TimeBudget time.Duration       `json:"timeBudget"`
	Hint       string              `json:"hint,omitempty"`
}

// Reason explains why a game ended.
type Reason string

const (
	BoardFull         Reason = "BOARD_FULL"
	Stagnation        Reason = "STAGNATION"
	RoundLimitReached Reason = "ROUND_LIMIT_REACHED"
	InternalFault     Reason = "INTERNAL_FAULT"
	Cancelled         Reason = "CANCELLED"
)

// Status is the scheduler state: RoundInProgress(Round) or GameOver(Reason).
type Status struct {
	Round  int    `json:"round"`
	Over   bool   `json:"over"`
	Reason Reason `json:"reason,omitempty"`
}

func (s Status) String() string {
	if s.Over {
		return fmt.Sprintf("GameOver(%s)", s.Reason)
	}
	return fmt.Sprintf("RoundInProgress(%d)", s.Round)
}

// Stats is per-player bookkeeping. Attempts = Successes + Failures; the
// failure breakdown is Timeouts + ParseErrors + Rejections + ProposerErrors.
type Stats struct {
	Attempts       int `json:"attempts"`
	Successes      int `json:"successes"`
	Failures       int `json:"failures"`
	Timeouts       int `json:"timeouts"`
	ParseErrors    int `json:"parseErrors"`
	Rejections     int `json:"rejections"`
	ProposerErrors int `json:"proposerErrors"`
}

// Result is what Run reports.
type Result struct {
	State  *game.State
	Status Status
	Stats  map[string]Stats
}

// Scheduler drives one game to completion.
type Scheduler struct {
	state     *game.State
	proposers map[string]Proposer
	validator *rules.Validator
	recorder  events.Recorder
	commit    func(ctx context.Context, st *game.State) error
	now       func() time.Time

	maxRounds       int
	maxAttempts     int
	stagnationLimit int
	defaultTimeout  time.Duration
	recordFailures  bool

	status  Status
	stats   map[string]*Stats
	pending []game.HistoryEntry // failed attempts of the current round
}

// New prepares a scheduler for state. Every player needs a proposer.
func New(state *game.State, proposers map[string]Proposer, v *rules.Validator, options ...Option) (*Scheduler, error) {
	if v == nil {
		return nil, ErrNoValidator
	}
	s := &Scheduler{ // Default values
		state:           state,
		proposers:       proposers,
		validator:       v,
		recorder:        events.Discard,
		now:             time.Now,
		maxAttempts:     DefaultMaxAttempts,
		stagnationLimit: DefaultStagnationLimit,
		defaultTimeout:  DefaultMoveTimeout,
		recordFailures:  true,
		status:          Status{Round: state.Round},
		stats:           make(map[string]*Stats, len(state.Players)),
	}
	for _, option := range options {
		option(s)
	}
	for _, p := range state.Players {
		if s.proposers[p.Name] == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoProposer, p.Name)
		}
		s.stats[p.Name] = &Stats{}
	}
	if state.Final {
		s.status = Status{Round: state.Round, Over: true, Reason: Reason(state.EndReason)}
	}
	return s, nil
}

// State returns the last committed state.
func (s *Scheduler) State() *game.State { return s.state }

// Status returns the current scheduler state.
func (s *Scheduler) Status() Status { return s.status }

// Stats returns a copy of the per-player statistics.
func (s *Scheduler) Stats() map[string]Stats {
	out := make(map[string]Stats, len(s.stats))
	for name, st := range s.stats {
		out[name] = *st
	}
	return out
}

func (s *Scheduler) result() Result {
	return Result{State: s.state, Status: s.status, Stats: s.Stats()}
}

// Run plays rounds until the game is over, ctx is cancelled or an internal
// fault occurs. On cancellation and faults the last committed state is
// returned unfinished so the game can be resumed. A panic while playing is
// reported as an internal fault.
func (s *Scheduler) Run(ctx context.Context) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = s.abort(ctx, fmt.Errorf("%w: panic: %v", ErrInternalFault, r))
		}
	}()
	if s.status.Over {
		return s.result(), nil
	}
	if s.state.Board.EmptyCellCount() == 0 {
		return s.finish(ctx, BoardFull)
	}
	if s.maxRounds > 0 && s.state.Round > s.maxRounds {
		return s.finish(ctx, RoundLimitReached)
	}

	for {
		round := s.state.Round
		s.status = Status{Round: round}
		s.pending = s.pending[:0]

		accepted := 0
		for _, p := range s.state.Players {
			if s.state.Board.EmptyCellCount() == 0 {
				break // no legal move is left for the rest of the round
			}
			ok, err := s.turn(ctx, p, round)
			if err != nil {
				return s.abort(ctx, err)
			}
			if ok {
				accepted++
			}
		}

		stagnant := 0
		if accepted == 0 {
			stagnant = s.state.Stagnant + 1
		}
		next, err := s.annotate()
		if err != nil {
			return s.abort(ctx, err)
		}
		if err := s.swap(ctx, next.Advance(round+1, stagnant)); err != nil {
			return s.abort(ctx, err)
		}
		if err := s.emit(ctx, events.Event{Kind: events.RoundCompleted, Round: round, Scores: s.state.Scores()}); err != nil {
			return s.abort(ctx, err)
		}

		switch {
		case s.state.Board.EmptyCellCount() == 0:
			return s.finish(ctx, BoardFull)
		case stagnant >= s.stagnationLimit:
			return s.finish(ctx, Stagnation)
		case s.maxRounds > 0 && round+1 > s.maxRounds:
			return s.finish(ctx, RoundLimitReached)
		}
	}
}

// turn plays one player's turn and reports whether a move was accepted.
// Only cancellation and internal faults are returned as errors.
func (s *Scheduler) turn(ctx context.Context, p game.Player, round int) (bool, error) {
	st := s.stats[p.Name]
	hint := ""
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		st.Attempts++

		budget := p.TimeBudget
		if budget <= 0 {
			budget = s.defaultTimeout
		}
		req := s.request(p, round, attempt, budget, hint)
		text, err := s.acquire(ctx, s.proposers[p.Name], req, budget)
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			kind, reason := events.MoveRejected, ReasonProposerFailed
			if errors.Is(err, ErrProposalTimeout) {
				kind, reason = events.ProposalTimeout, ReasonTimeout
				st.Timeouts++
			} else {
				st.ProposerErrors++
			}
			if hint, err = s.fail(ctx, p.Name, round, attempt, kind, "", reason, err.Error()); err != nil {
				return false, err
			}
			continue
		}

		m, err := move.Parse(text)
		if err != nil {
			st.ParseErrors++
			if hint, err = s.fail(ctx, p.Name, round, attempt, events.MoveRejected, "", ReasonMalformed, err.Error()); err != nil {
				return false, err
			}
			continue
		}

		acc, err := s.validator.Validate(m, s.state.Board, s.state)
		if err != nil {
			var rej *rules.Rejection
			if !errors.As(err, &rej) {
				return false, fmt.Errorf("%w: validate: %v", ErrInternalFault, err)
			}
			st.Rejections++
			if hint, err = s.fail(ctx, p.Name, round, attempt, events.MoveRejected, m.Word, string(rej.Reason), rej.Message); err != nil {
				return false, err
			}
			continue
		}

		next, err := s.state.Apply(acc, p.Name, round)
		if err != nil {
			return false, fmt.Errorf("%w: apply: %v", ErrInternalFault, err)
		}
		if err := s.swap(ctx, next); err != nil {
			return false, err
		}
		st.Successes++
		err = s.emit(ctx, events.Event{
			Kind:    events.MoveAccepted,
			Round:   round,
			Player:  p.Name,
			Attempt: attempt,
			Word:    m.Word,
			Length:  acc.Score,
			Message: m.Gloss,
		})
		return true, err
	}
	return false, nil
}

// fail books a failed attempt and returns the retry hint for the next one.
// The current state is left as it is.
func (s *Scheduler) fail(ctx context.Context, player string, round, attempt int, kind events.Kind, word, reason, msg string) (string, error) {
	s.stats[player].Failures++
	if s.recordFailures {
		s.pending = append(s.pending, game.HistoryEntry{Author: player, Word: word, Reason: reason, Round: round})
	}
	err := s.emit(ctx, events.Event{
		Kind:    kind,
		Round:   round,
		Player:  player,
		Attempt: attempt,
		Word:    word,
		Reason:  reason,
		Message: msg,
	})
	return fmt.Sprintf("previous attempt failed: %s: %s", reason, msg), err
}

// annotate returns the current state with the round's failed attempts appended.
func (s *Scheduler) annotate() (*game.State, error) {
	next := s.state
	for _, f := range s.pending {
		var err error
		if next, err = next.RecordFailure(f.Author, f.Word, f.Reason, f.Round); err != nil {
			return nil, fmt.Errorf("%w: record failure: %v", ErrInternalFault, err)
		}
	}
	s.pending = s.pending[:0]
	return next, nil
}

// acquire asks p for a proposal within budget. Once the budget expires any
// late answer is discarded: the result channel is buffered so the proposer
// goroutine never blocks, and nobody reads it.
func (s *Scheduler) acquire(ctx context.Context, p Proposer, req Request, budget time.Duration) (string, error) {
	pctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: fmt.Errorf("proposer panic: %v", r)}
			}
		}()
		text, err := p.Propose(pctx, req)
		ch <- result{text: text, err: err}
	}()

	select {
	case r := <-ch:
		if errors.Is(pctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s", ErrProposalTimeout, budget)
		}
		return r.text, r.err
	case <-pctx.Done():
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%w after %s", ErrProposalTimeout, budget)
	}
}

func (s *Scheduler) request(p game.Player, round, attempt int, budget time.Duration, hint string) Request {
	return Request{
		GameID:     s.state.ID,
		Round:      round,
		Player:     p.Name,
		Attempt:    attempt,
		Board:      s.state.Board.Rows(),
		Empty:      s.state.Board.EmptyCells(),
		Words:      s.state.Words(),
		Scores:     s.state.Scores(),
		TimeBudget: budget,
		Hint:       hint,
	}
}

// swap commits next and makes it current. On a commit error the previous
// state stays current.
func (s *Scheduler) swap(ctx context.Context, next *game.State) error {
	if s.commit != nil {
		if err := s.commit(ctx, next); err != nil {
			return fmt.Errorf("%w: commit: %v", ErrInternalFault, err)
		}
	}
	s.state = next
	return nil
}

func (s *Scheduler) emit(ctx context.Context, e events.Event) error {
	if e.GameID == "" {
		e.GameID = s.state.ID
	}
	if err := s.recorder.Record(ctx, events.Stamp(ctx, e, s.now())); err != nil {
		return fmt.Errorf("%w: record event: %v", ErrInternalFault, err)
	}
	return nil
}

func (s *Scheduler) finish(ctx context.Context, reason Reason) (Result, error) {
	if err := s.swap(ctx, s.state.Finish(string(reason))); err != nil {
		return s.abort(ctx, err)
	}
	s.status = Status{Round: s.state.Round - 1, Over: true, Reason: reason}
	if s.status.Round < 1 {
		s.status.Round = 1
	}
	if err := s.emit(ctx, events.Event{Kind: events.GameOver, Round: s.status.Round, Reason: string(reason), Final: true, Scores: s.state.Scores()}); err != nil {
		return s.result(), err
	}
	return s.result(), nil
}

// abort ends the run without finalising the state. Annotations of the
// unfinished round are dropped; the round is replayed on resume.
func (s *Scheduler) abort(ctx context.Context, err error) (Result, error) {
	reason := InternalFault
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		reason = Cancelled
	}
	s.status = Status{Round: s.state.Round, Over: true, Reason: reason}
	// Best effort: the sink may be what failed.
	_ = s.recorder.Record(context.WithoutCancel(ctx), events.Stamp(ctx, events.Event{
		Kind:    events.GameOver,
		GameID:  s.state.ID,
		Round:   s.state.Round,
		Reason:  string(reason),
		Message: err.Error(),
		Scores:  s.state.Scores(),
	}, s.now()))
	return s.result(), err
}
