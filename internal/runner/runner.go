// internal/runner/runner.go
//
// Runs games inside the service.
// Responsibilities:
//   - Build a game from a request: board size, seed word (explicit, random or
//     daily) and a roster of proposers (remote agents or scripts).
//   - Drive each game on its own goroutine with a turn.Scheduler whose commit
//     hook persists every new state, under a fresh run id.
//   - Cancel running games and resume persisted unfinished ones.
//
// A game runs detached from the request that started it; only Cancel stops it.

package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"github.com/robalobadob/balda/internal/daily"
	"github.com/robalobadob/balda/internal/events"
	"github.com/robalobadob/balda/internal/game"
	"github.com/robalobadob/balda/internal/proposer"
	"github.com/robalobadob/balda/internal/rules"
	"github.com/robalobadob/balda/internal/store"
	"github.com/robalobadob/balda/internal/turn"
	"github.com/robalobadob/balda/internal/words"
)

var (
	ErrRunning    = errors.New("runner: game is already running")
	ErrNotRunning = errors.New("runner: game is not running")
	ErrFinished   = errors.New("runner: game is over")
	ErrBadRequest = errors.New("runner: invalid game request")
)

// Seed word modes besides an explicit word.
const (
	SeedRandom = "random"
	SeedDaily  = "daily"
)

// PlayerSpec says who plays and where the moves come from: a remote agent
// URL or a fixed script of descriptor lines.
type PlayerSpec struct {
	Name         string   `json:"name"`
	URL          string   `json:"url,omitempty"`
	Script       []string `json:"script,omitempty"`
	TimeBudgetMs int      `json:"timeBudgetMs,omitempty"`
}

// Limits override the scheduler defaults; zero keeps the default.
type Limits struct {
	MaxRounds       int `json:"maxRounds,omitempty"`
	MaxAttempts     int `json:"maxAttempts,omitempty"`
	StagnationLimit int `json:"stagnationLimit,omitempty"`
}

// Spec describes a game to start.
type Spec struct {
	Rows     int          `json:"rows"`
	Cols     int          `json:"cols"`
	Seed     string       `json:"seed"` // a word, "random" (also when empty) or "daily"
	RandSeed uint64       `json:"randSeed,omitempty"`
	Players  []PlayerSpec `json:"players"`
	Limits
}

// Defaults come from configuration.
type Defaults struct {
	Limits
	MoveTimeout time.Duration
	DailySalt   string
}

// Option configures a Runner.
type Option func(r *Runner)

func WithDefaults(d Defaults) Option { return func(r *Runner) { r.defaults = d } }

func WithRecorder(rec events.Recorder) Option {
	return func(r *Runner) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

func WithClock(now func() time.Time) Option { return func(r *Runner) { r.now = now } }

type run struct {
	runID  string
	cancel context.CancelFunc
	done   chan struct{}
	result turn.Result
	err    error
}

// Runner owns the running games. Safe for concurrent use.
type Runner struct {
	store     store.Store
	dict      *words.Dictionary
	validator *rules.Validator
	recorder  events.Recorder
	defaults  Defaults
	now       func() time.Time

	mu   sync.Mutex
	runs map[string]*run
	wg   sync.WaitGroup
}

func New(st store.Store, dict *words.Dictionary, options ...Option) (*Runner, error) {
	v, err := rules.New(dict)
	if err != nil {
		return nil, err
	}
	r := &Runner{
		store:     st,
		dict:      dict,
		validator: v,
		recorder:  events.Log{},
		defaults: Defaults{
			Limits:      Limits{MaxAttempts: turn.DefaultMaxAttempts, StagnationLimit: turn.DefaultStagnationLimit},
			MoveTimeout: turn.DefaultMoveTimeout,
		},
		now:  time.Now,
		runs: make(map[string]*run),
	}
	for _, option := range options {
		option(r)
	}
	return r, nil
}

// Validator exposes the rules the runner validates with.
func (r *Runner) Validator() *rules.Validator { return r.validator }

// Start creates, persists and launches a new game, returning its id.
func (r *Runner) Start(ctx context.Context, spec Spec) (string, error) {
	if spec.Rows == 0 && spec.Cols == 0 {
		spec.Rows, spec.Cols = 5, 5
	}
	if spec.Rows <= 0 || spec.Cols <= 0 {
		return "", fmt.Errorf("%w: board %dx%d", ErrBadRequest, spec.Rows, spec.Cols)
	}
	if len(spec.Players) == 0 {
		return "", fmt.Errorf("%w: no players", ErrBadRequest)
	}
	seed, err := r.seedWord(spec)
	if err != nil {
		return "", err
	}

	players := make([]game.Player, len(spec.Players))
	for i, p := range spec.Players {
		players[i] = game.Player{Name: p.Name, Proposer: p.source(), TimeBudget: p.budget(r.defaults.MoveTimeout)}
	}
	st, err := game.New(game.Setup{
		ID:      uuid.NewString(),
		Rows:    spec.Rows,
		Cols:    spec.Cols,
		Seed:    seed,
		SeedRow: -1,
		SeedCol: -1,
		Players: players,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	proposers, err := buildProposers(spec.Players, st)
	if err != nil {
		return "", err
	}
	if err := r.store.Save(ctx, st); err != nil {
		return "", fmt.Errorf("save %s: %w", st.ID, err)
	}
	if err := r.launch(st, proposers, spec.Limits); err != nil {
		return "", err
	}
	return st.ID, nil
}

// Resume restarts a persisted unfinished game. players supplies the
// proposers; every roster name must be present.
func (r *Runner) Resume(ctx context.Context, id string, players []PlayerSpec, limits Limits) error {
	if r.Running(id) {
		return ErrRunning
	}
	st, err := r.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if st.Final {
		return ErrFinished
	}
	proposers, err := buildProposers(players, st)
	if err != nil {
		return err
	}
	return r.launch(st, proposers, limits)
}

// Cancel stops a running game. Its state stays resumable.
func (r *Runner) Cancel(id string) error {
	r.mu.Lock()
	rn, ok := r.runs[id]
	r.mu.Unlock()
	if !ok || isDone(rn) {
		return ErrNotRunning
	}
	rn.cancel()
	return nil
}

// Wait blocks until the latest run of id ends or ctx is done.
func (r *Runner) Wait(ctx context.Context, id string) (turn.Result, error) {
	r.mu.Lock()
	rn, ok := r.runs[id]
	r.mu.Unlock()
	if !ok {
		return turn.Result{}, ErrNotRunning
	}
	select {
	case <-rn.done:
		return rn.result, rn.err
	case <-ctx.Done():
		return turn.Result{}, ctx.Err()
	}
}

// Running reports whether id is currently being played.
func (r *Runner) Running(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rn, ok := r.runs[id]
	return ok && !isDone(rn)
}

// Shutdown cancels every running game and waits for them to stop.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	for _, rn := range r.runs {
		rn.cancel()
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) launch(st *game.State, proposers map[string]turn.Proposer, limits Limits) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rn, ok := r.runs[st.ID]; ok && !isDone(rn) {
		return ErrRunning
	}

	sch, err := turn.New(st, proposers, r.validator,
		turn.WithRecorder(r.recorder),
		turn.WithCommit(r.store.Save),
		turn.WithClock(r.now),
		turn.WithDefaultTimeout(r.defaults.MoveTimeout),
		turn.WithMaxRounds(pick(limits.MaxRounds, r.defaults.MaxRounds)),
		turn.WithMaxAttempts(pick(limits.MaxAttempts, r.defaults.MaxAttempts)),
		turn.WithStagnationLimit(pick(limits.StagnationLimit, r.defaults.StagnationLimit)),
	)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	ctx = events.WithRunID(events.WithGameID(ctx, st.ID), runID)
	rn := &run{runID: runID, cancel: cancel, done: make(chan struct{})}
	r.runs[st.ID] = rn

	logger := log.With().Str(events.FieldGameID, st.ID).Str(events.FieldRunID, runID).Logger()
	logger.Info().Int("round", st.Round).Int("players", len(st.Players)).Msg("game started")

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()
		res, err := sch.Run(ctx)
		rn.result, rn.err = res, err
		close(rn.done)

		ev := logger.Info()
		if err != nil && !errors.Is(err, context.Canceled) {
			ev = logger.Error().Err(err)
		}
		ev.Str("status", res.Status.String()).Interface("scores", res.State.Scores()).Msg("game stopped")
	}()
	return nil
}

func (r *Runner) seedWord(spec Spec) (string, error) {
	length := spec.Cols
	if length > 5 {
		length = 5
	}
	mode := strings.ToLower(strings.TrimSpace(spec.Seed))
	switch mode {
	case "", SeedRandom:
		src := spec.RandSeed
		if src == 0 {
			src = uint64(r.now().UnixNano())
		}
		rng := rand.New(rand.NewSource(src))
		for n := length; n >= r.dict.MinLength(); n-- {
			if w, ok := r.dict.RandomWord(rng, n); ok {
				return w, nil
			}
		}
	case SeedDaily:
		for n := length; n >= r.dict.MinLength(); n-- {
			if w := daily.SeedWord(r.now(), r.defaults.DailySalt, r.dict.WordsOfLength(n)); w != "" {
				return w, nil
			}
		}
	default:
		return strings.ToUpper(strings.TrimSpace(spec.Seed)), nil
	}
	return "", fmt.Errorf("%w: no seed word fits %d columns", ErrBadRequest, spec.Cols)
}

func buildProposers(specs []PlayerSpec, st *game.State) (map[string]turn.Proposer, error) {
	out := make(map[string]turn.Proposer, len(specs))
	for _, p := range specs {
		switch {
		case p.URL != "":
			out[p.Name] = proposer.NewRemote(p.URL)
		case len(p.Script) > 0:
			out[p.Name] = proposer.NewScript(p.Script...)
		default:
			return nil, fmt.Errorf("%w: player %q needs a url or a script", ErrBadRequest, p.Name)
		}
	}
	for _, p := range st.Players {
		if out[p.Name] == nil {
			return nil, fmt.Errorf("%w: no proposer for player %q", ErrBadRequest, p.Name)
		}
	}
	return out, nil
}

func (p PlayerSpec) source() string {
	if p.URL != "" {
		return p.URL
	}
	return "script"
}

func (p PlayerSpec) budget(def time.Duration) time.Duration {
	if p.TimeBudgetMs > 0 {
		return time.Duration(p.TimeBudgetMs) * time.Millisecond
	}
	return def
}

func isDone(rn *run) bool {
	select {
	case <-rn.done:
		return true
	default:
		return false
	}
}

func pick(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
