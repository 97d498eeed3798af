// Package agent implements the planning session: the orchestration loop
// that drives the reasoning service through tool calls until it emits a
// final plan.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/eventpilot/eventpilot/internal/llm"
	"github.com/eventpilot/eventpilot/internal/tools"
	"github.com/eventpilot/eventpilot/internal/types"
	"github.com/rs/xid"
	"go.uber.org/zap"
)

// finishTool is the terminal pseudo-tool the reasoning service names
// when the plan is complete.
const finishTool = "finish"

const (
	defaultMaxRetries    = 5
	defaultRetryInterval = 2 * time.Second
)

// Reasoner is the reasoning-service surface the session drives.
type Reasoner interface {
	Chat(ctx context.Context, history []types.Message) (string, error)
}

// Prompter supplies the next human turn when the reasoning service
// replies conversationally instead of naming a tool. Returning io.EOF
// ends the session gracefully with the last reply as the result.
type Prompter func(ctx context.Context) (string, error)

// Config holds session configuration. Registry and Reasoner are
// injected per session so concurrent sessions never share tool state.
type Config struct {
	Registry *tools.Registry
	Reasoner Reasoner
	Prompter Prompter
	Logger   *zap.Logger

	// MaxMessages caps the history window sent to the reasoning
	// service; 0 sends the full transcript.
	MaxMessages int

	// MaxRetries bounds consecutive rate-limit retries (default 5).
	MaxRetries int

	// RetryInterval is the wait between rate-limit retries when the
	// service supplies no hint (default 2s).
	RetryInterval time.Duration

	// Events receives progress notifications; may be nil.
	Events func(types.SessionEvent)
}

// Outcome is what a completed session yields.
type Outcome struct {
	// Result is the finish payload (or the final conversational reply
	// when the user ended the exchange).
	Result string

	// Summary is the structured plan, nil when the accumulated results
	// were insufficient to build one; SummaryErr then says why.
	Summary    *types.PlanSummary
	SummaryErr error

	// Results is the final accumulated-results mapping.
	Results map[string]any
}

// Session owns the state of one planning conversation. It is
// single-threaded: exactly one outstanding reasoning-service call at a
// time, and the state is discarded when Run returns.
type Session struct {
	id            string
	reasoner      Reasoner
	executor      *tools.Executor
	prompter      Prompter
	history       *History
	results       map[string]any
	events        func(types.SessionEvent)
	logger        *zap.Logger
	maxMessages   int
	maxRetries    int
	retryInterval time.Duration
}

// NewSession creates a session over the given registry and reasoner.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Registry == nil {
		return nil, errors.New("agent: registry is required")
	}
	if cfg.Reasoner == nil {
		return nil, errors.New("agent: reasoner is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryInterval == 0 {
		cfg.RetryInterval = defaultRetryInterval
	}

	id := xid.New().String()
	return &Session{
		id:            id,
		reasoner:      cfg.Reasoner,
		executor:      tools.NewExecutor(cfg.Registry),
		prompter:      cfg.Prompter,
		history:       NewHistory(cfg.Registry.PlannerPrompt()),
		results:       make(map[string]any),
		events:        cfg.Events,
		logger:        cfg.Logger.With(zap.String("session", id)),
		maxMessages:   cfg.MaxMessages,
		maxRetries:    cfg.MaxRetries,
		retryInterval: cfg.RetryInterval,
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Results returns the accumulated results mapping. Callers wanting
// durability must capture it before the session is discarded.
func (s *Session) Results() map[string]any { return s.results }

// Run drives the orchestration loop for one planning request until the
// reasoning service finishes, a fault terminates the session, or the
// context is cancelled. Cancellation is observed at the top of each
// iteration; it never preempts an in-flight call.
func (s *Session) Run(ctx context.Context, userInput string) (*Outcome, error) {
	s.history.Add("user", userInput)
	s.logger.Info("session started", zap.String("input", userInput))

	for {
		if err := ctx.Err(); err != nil {
			s.logger.Info("session cancelled")
			s.emit(types.SessionEvent{Phase: types.PhaseError, Err: types.ErrCancelled})
			return nil, types.ErrCancelled
		}

		s.emit(types.SessionEvent{Phase: types.PhaseThinking})

		content, err := s.chatWithRetry(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				s.emit(types.SessionEvent{Phase: types.PhaseError, Err: types.ErrCancelled})
				return nil, types.ErrCancelled
			}
			err = fmt.Errorf("reasoning service: %w", err)
			s.emit(types.SessionEvent{Phase: types.PhaseError, Err: err})
			return nil, err
		}

		parsed, ok := llm.ExtractJSON(content)
		if !ok {
			// No structured action: a conversational turn. Show it,
			// solicit the next human turn, and loop.
			s.history.Add("assistant", content)
			s.emit(types.SessionEvent{Phase: types.PhaseResponding, Message: content})

			reply, err := s.nextUserTurn(ctx)
			if err != nil {
				if errors.Is(err, io.EOF) {
					s.emit(types.SessionEvent{Phase: types.PhaseDone})
					return s.outcome(ctx, content), nil
				}
				if errors.Is(err, context.Canceled) || ctx.Err() != nil {
					s.emit(types.SessionEvent{Phase: types.PhaseError, Err: types.ErrCancelled})
					return nil, types.ErrCancelled
				}
				err = fmt.Errorf("read user turn: %w", err)
				s.emit(types.SessionEvent{Phase: types.PhaseError, Err: err})
				return nil, err
			}
			s.history.Add("user", reply)
			continue
		}

		call := decodeToolCall(parsed)
		if call.Tool == finishTool {
			outcome := s.outcome(ctx, finishResult(call.Args))
			s.logger.Info("session finished", zap.Int("turns", s.history.Len()))
			s.emit(types.SessionEvent{Phase: types.PhaseDone, Summary: outcome.Summary})
			return outcome, nil
		}

		s.emit(types.SessionEvent{Phase: types.PhaseToolCall, ToolCall: &call})
		s.logger.Info("executing tool",
			zap.String("tool", call.Tool),
			zap.Any("args", call.Args))

		s.emit(types.SessionEvent{Phase: types.PhaseToolExecuting, ToolCall: &call})
		start := time.Now()
		output, err := s.executor.Execute(ctx, call.Tool, call.Args)
		elapsed := time.Since(start)

		if err != nil {
			// Unknown tools and execution faults both terminate: the
			// loop never guesses a different tool name or retries.
			s.emit(types.SessionEvent{
				Phase: types.PhaseError,
				ToolResult: &types.ToolResult{
					Tool: call.Tool, Success: false, Error: err.Error(), Duration: elapsed,
				},
				Err: err,
			})
			return nil, err
		}

		// Close the loop: the reasoning service sees its own action and
		// the outcome on the next turn.
		s.history.Add("assistant", mustJSON(call))
		s.history.Add("user", mustJSON(output))
		s.merge(output)

		s.emit(types.SessionEvent{
			Phase: types.PhaseResponding,
			ToolResult: &types.ToolResult{
				Tool: call.Tool, Output: output, Success: true, Duration: elapsed,
			},
		})
	}
}

// chatWithRetry calls the reasoning service, resubmitting the same
// windowed history after rate-limit backoff. No other fault is retried.
func (s *Session) chatWithRetry(ctx context.Context) (string, error) {
	attempts := 0
	for {
		content, err := s.reasoner.Chat(ctx, s.history.Window(s.maxMessages))
		if err == nil {
			return content, nil
		}

		var rl *llm.RateLimitError
		if !errors.As(err, &rl) {
			return "", err
		}

		attempts++
		if s.maxRetries > 0 && attempts > s.maxRetries {
			return "", fmt.Errorf("rate limit retries exhausted after %d attempts: %w", attempts, err)
		}

		wait := rl.RetryAfter
		if wait <= 0 {
			wait = s.retryInterval
		}
		s.logger.Warn("rate limited, retrying",
			zap.Duration("wait", wait),
			zap.Int("attempt", attempts))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
}

// nextUserTurn solicits an interleaved human reply. Without a prompter
// the conversational reply becomes the session result.
func (s *Session) nextUserTurn(ctx context.Context) (string, error) {
	if s.prompter == nil {
		return "", io.EOF
	}
	s.emit(types.SessionEvent{Phase: types.PhaseAwaitingInput})
	return s.prompter(ctx)
}

// merge folds a tool's output into the accumulated results,
// last-write-wins per key.
func (s *Session) merge(output map[string]any) {
	for k, v := range output {
		s.results[k] = v
	}
}

func (s *Session) outcome(ctx context.Context, result string) *Outcome {
	summary, err := BuildSummary(ctx, s.results)
	return &Outcome{
		Result:     result,
		Summary:    summary,
		SummaryErr: err,
		Results:    s.results,
	}
}

func (s *Session) emit(event types.SessionEvent) {
	if s.events != nil {
		s.events(event)
	}
}

// decodeToolCall converts the extracted JSON object into a ToolCall.
// A missing or non-string "tool" key yields an empty tool name, which
// dispatch reports as an unknown tool.
func decodeToolCall(parsed map[string]any) types.ToolCall {
	call := types.ToolCall{Args: map[string]any{}}
	if name, ok := parsed["tool"].(string); ok {
		call.Tool = name
	}
	if args, ok := parsed["args"].(map[string]any); ok {
		call.Args = args
	}
	return call
}

// finishResult extracts the carried result payload from a finish action.
func finishResult(args map[string]any) string {
	switch v := args["result"].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return mustJSON(v)
	}
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
