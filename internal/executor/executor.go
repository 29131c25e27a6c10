// Package executor runs commands against a host document. Each surface owns
// one Executor and at most one command is in flight per surface.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/alanmaizon/qalam/internal/domain"
	"github.com/alanmaizon/qalam/internal/llm"
	"github.com/alanmaizon/qalam/internal/metrics"
	"github.com/alanmaizon/qalam/internal/middleware"
	"github.com/alanmaizon/qalam/internal/prompts"
	"github.com/alanmaizon/qalam/internal/replies"
	"github.com/alanmaizon/qalam/internal/textctx"
)

const DefaultMaxTextLength = 5000

var (
	ErrBusy             = errors.New("another command is already running on this surface")
	ErrInputEmpty       = errors.New("there is no text to work on")
	ErrInputTooLong     = errors.New("the text is too long")
	ErrNoReplies        = errors.New("no replies available")
	ErrAIDisabled       = errors.New("AI features are disabled")
	ErrUnknownCommand   = errors.New("unknown command")
	ErrGenerationFailed = errors.New("generation failed")
)

// Document is the host text proxy a command reads and edits.
type Document interface {
	textctx.Source
	DeleteBackward(count int)
	InsertText(text string)
	// AdjustCursorOffset moves the cursor and collapses any selection.
	AdjustCursorOffset(offset int)
}

// Policy carries the user-tunable limits read at the start of every call.
type Policy struct {
	AIEnabled     bool
	MaxTextLength int
}

func DefaultPolicy() Policy {
	return Policy{AIEnabled: true, MaxTextLength: DefaultMaxTextLength}
}

type Options struct {
	// Generator defaults to llm.CurrentGenerator() at call time.
	Generator llm.Generator
	Feedback  Feedback
	Policy    func() Policy
}

type Invocation struct {
	Command        domain.Command
	TargetLanguage string
	SourceLanguage string
	ErrorContext   string
}

type Outcome struct {
	Command  domain.Command
	Result   string
	Edit     domain.EditSummary
	Replies  []domain.ReplyCandidate
	Provider string
	Duration time.Duration
	// Message is the user-facing text for a failed call.
	Message string
}

type Executor struct {
	surface   domain.Surface
	generator llm.Generator
	feedback  Feedback
	policy    func() Policy

	mu    sync.Mutex
	state domain.ProcessingState
}

func New(surface domain.Surface, opts Options) *Executor {
	executor := &Executor{
		surface:   surface,
		generator: opts.Generator,
		feedback:  opts.Feedback,
		policy:    opts.Policy,
	}
	if executor.feedback == nil {
		executor.feedback = NoopFeedback{}
	}
	if executor.policy == nil {
		executor.policy = DefaultPolicy
	}
	return executor
}

func (e *Executor) Surface() domain.Surface {
	return e.surface
}

func (e *Executor) State() domain.ProcessingState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Execute runs one command. The document is only touched after a
// successful generation, and the surface is idle again when Execute returns.
func (e *Executor) Execute(ctx context.Context, doc Document, inv Invocation) (Outcome, error) {
	if !inv.Command.Valid() {
		return Outcome{}, ErrUnknownCommand
	}
	info := inv.Command.Info()
	strategy := textctx.ForScope(info.Scope)

	// The reply path may be answered from the canned table, so its AI gate
	// waits until a remote call is needed.
	isReply := inv.Command == domain.CommandReply
	operative, err := e.begin(ctx, inv.Command, !isReply, func() string { return textctx.FromSource(doc, strategy) })
	if err != nil {
		return Outcome{Command: inv.Command, Message: userMessage(err)}, err
	}
	defer e.finish()

	if isReply {
		return e.suggest(ctx, operative)
	}

	outcome, err := e.generate(ctx, domain.ExecutionRequest{
		Command:        inv.Command,
		SourceText:     operative,
		TargetLanguage: inv.TargetLanguage,
		SourceLanguage: inv.SourceLanguage,
		ErrorContext:   inv.ErrorContext,
	})
	if err != nil {
		return outcome, err
	}

	outcome.Edit = apply(doc, info, strategy, outcome.Result)
	e.feedback.Success()
	e.record(ctx, inv.Command, "success")
	return outcome, nil
}

// SuggestReplies proposes replies to message, trying the canned table before
// the model. It never edits a document.
func (e *Executor) SuggestReplies(ctx context.Context, message string) (Outcome, error) {
	operative, err := e.begin(ctx, domain.CommandReply, false, func() string { return strings.TrimSpace(message) })
	if err != nil {
		return Outcome{Command: domain.CommandReply, Message: userMessage(err)}, err
	}
	defer e.finish()
	return e.suggest(ctx, operative)
}

// InsertReply types a chosen reply at the cursor. It is rejected while a
// command is in flight on this surface.
func (e *Executor) InsertReply(doc Document, reply domain.ReplyCandidate) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Busy {
		e.record(context.Background(), domain.CommandReply, "busy")
		return ErrBusy
	}
	doc.InsertText(reply.Text)
	e.feedback.Success()
	return nil
}

// begin checks the guards and marks the surface busy. read runs under the
// surface lock so the operative text cannot be raced by a second call.
func (e *Executor) begin(ctx context.Context, command domain.Command, requireAI bool, read func() string) (string, error) {
	policy := e.policy()
	if requireAI && !policy.AIEnabled {
		e.record(ctx, command, "disabled")
		return "", ErrAIDisabled
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Busy {
		e.record(ctx, command, "busy")
		return "", ErrBusy
	}

	operative := read()
	if operative == "" {
		e.feedback.Error()
		e.record(ctx, command, "empty")
		return "", ErrInputEmpty
	}
	if policy.MaxTextLength > 0 && textctx.SpanLength(operative) > policy.MaxTextLength {
		e.feedback.Error()
		e.record(ctx, command, "too_long")
		return "", ErrInputTooLong
	}

	e.state = domain.ProcessingState{Busy: true, Command: command}
	e.feedback.Impact()
	return operative, nil
}

func (e *Executor) finish() {
	e.mu.Lock()
	e.state = domain.ProcessingState{}
	e.mu.Unlock()
}

func (e *Executor) suggest(ctx context.Context, message string) (Outcome, error) {
	if quick := replies.MatchQuick(message); len(quick) > 0 {
		e.feedback.Success()
		e.record(ctx, domain.CommandReply, "quick")
		return Outcome{Command: domain.CommandReply, Replies: quick, Provider: "quick"}, nil
	}
	if !e.policy().AIEnabled {
		e.record(ctx, domain.CommandReply, "disabled")
		return Outcome{Command: domain.CommandReply, Message: userMessage(ErrAIDisabled)}, ErrAIDisabled
	}

	outcome, err := e.generate(ctx, domain.ExecutionRequest{Command: domain.CommandReply, SourceText: message})
	if err != nil {
		return outcome, err
	}

	outcome.Replies = replies.Parse(outcome.Result)
	if len(outcome.Replies) == 0 {
		e.feedback.Error()
		e.record(ctx, domain.CommandReply, "no_replies")
		outcome.Message = ErrNoReplies.Error()
		return outcome, ErrNoReplies
	}
	e.feedback.Success()
	e.record(ctx, domain.CommandReply, "success")
	return outcome, nil
}

func (e *Executor) generate(ctx context.Context, req domain.ExecutionRequest) (Outcome, error) {
	generator := e.generator
	if generator == nil {
		generator = llm.CurrentGenerator()
	}

	started := time.Now()
	result, err := generator.Generate(ctx, llm.NewRequest(req.Command, prompts.Build(req)))
	outcome := Outcome{
		Command:  req.Command,
		Provider: generator.Name(),
		Duration: time.Since(started),
	}
	if err != nil {
		e.feedback.Error()
		e.record(ctx, req.Command, "failed")
		outcome.Message = llm.SurfaceMessage(err)
		return outcome, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	outcome.Result = result
	return outcome, nil
}

// apply mutates the document for a successful command. The span to replace
// is derived again from the current document rather than remembered from
// the request.
func apply(doc Document, info domain.CommandInfo, strategy textctx.Strategy, result string) domain.EditSummary {
	switch info.Apply {
	case domain.ApplyAppend:
		inserted := "\n\n" + result
		doc.AdjustCursorOffset(0)
		doc.InsertText(inserted)
		return domain.EditSummary{Inserted: inserted}
	case domain.ApplyNone:
		return domain.EditSummary{}
	default:
		deleted := textctx.SpanLength(textctx.FromSource(doc, strategy))
		doc.DeleteBackward(deleted)
		doc.InsertText(result)
		return domain.EditSummary{Deleted: deleted, Inserted: result}
	}
}

func (e *Executor) record(ctx context.Context, command domain.Command, outcome string) {
	metrics.RecordCommandExecution(string(e.surface), command.String(), outcome)
	log.Printf(
		"request_id=%s component=executor surface=%s command=%s outcome=%s",
		middleware.GetRequestIDFromContext(ctx),
		e.surface,
		command,
		outcome,
	)
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, ErrInputEmpty):
		return "Type or select some text first."
	case errors.Is(err, ErrInputTooLong):
		return "The text is too long for AI processing."
	case errors.Is(err, ErrBusy):
		return "Please wait for the current request to finish."
	case errors.Is(err, ErrAIDisabled):
		return "AI features are turned off in settings."
	default:
		return err.Error()
	}
}
