// Package session holds the in-memory project state and the transitions that
// drive it. All mutation goes through a Controller.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pm-launchpad/internal/advisor"
	"pm-launchpad/internal/domain"
)

const WelcomeMessage = "Greetings. I'm your Senior Project Management Advisor. Ready to initiate a new project or phase? " +
	"Tell me about your business need or what you're looking to achieve."

// Advisor is the model client the controller drives.
type Advisor interface {
	Chat(ctx context.Context, module domain.Module, history []domain.ChatMessage, message string) (string, error)
	GenerateCharter(ctx context.Context, transcript string) (domain.ProjectCharter, error)
	GenerateStakeholders(ctx context.Context, transcript string) ([]domain.Stakeholder, error)
}

// Recorder counts applied transitions.
type Recorder interface {
	ObserveTransition(name string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveTransition(string) {}

// Snapshot is a deep copy of the controller state for rendering.
type Snapshot struct {
	State      domain.ProjectState
	View       domain.View
	Module     domain.Module
	Processing bool
	Notice     *Notice
}

// CanView reports whether the deliverable behind v exists yet.
func (s Snapshot) CanView(v domain.View) bool {
	switch v {
	case domain.ViewCharter:
		return s.State.HasCharter()
	case domain.ViewStakeholders:
		return s.State.HasStakeholders()
	default:
		return true
	}
}

// Controller serializes every transition behind a mutex. Model calls run
// outside the lock, so navigation stays responsive while a call is pending.
type Controller struct {
	advisor  Advisor
	log      zerolog.Logger
	now      func() time.Time
	recorder Recorder

	mu              sync.Mutex
	state           domain.ProjectState
	view            domain.View
	module          domain.Module
	inFlight        int
	charterGen      uint64
	stakeholdersGen uint64
	notice          *Notice
}

type Option func(*Controller)

func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) {
		c.log = l
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		if r != nil {
			c.recorder = r
		}
	}
}

// NewController returns a controller in the initial state: chat view,
// initiation module, one welcome message from the advisor, idle.
func NewController(a Advisor, opts ...Option) (*Controller, error) {
	if a == nil {
		return nil, errors.New("session: advisor must not be nil")
	}
	c := &Controller{
		advisor:  a,
		log:      zerolog.Nop(),
		now:      time.Now,
		recorder: nopRecorder{},
		view:     domain.ViewChat,
		module:   domain.ModuleInitiation,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state.Messages = []domain.ChatMessage{c.newMessage(domain.RoleModel, WelcomeMessage)}
	return c, nil
}

func (c *Controller) newMessage(role domain.Role, content string) domain.ChatMessage {
	return domain.ChatMessage{ID: newUUID(), Role: role, Content: content, Timestamp: c.now()}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{
		State:      c.state.Clone(),
		View:       c.view,
		Module:     c.module,
		Processing: c.inFlight > 0,
	}
	if c.notice != nil {
		n := *c.notice
		snap.Notice = &n
	}
	return snap
}

// SelectModule switches persona and returns to the chat view. Pending calls
// are not cancelled.
func (c *Controller) SelectModule(m domain.Module) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.module = m
	c.view = domain.ViewChat
	c.recorder.ObserveTransition("select_module")
}

// SelectView switches the displayed panel. Whether a deliverable may be shown
// is decided by the caller through Snapshot.CanView.
func (c *Controller) SelectView(v domain.View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = v
	c.recorder.ObserveTransition("select_view")
}

// DismissNotice clears the current notice, if any.
func (c *Controller) DismissNotice() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notice = nil
}

// SubmitMessage appends text as a user message and asks the advisor for a
// reply. It does nothing for blank text or while another call is pending.
func (c *Controller) SubmitMessage(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	c.mu.Lock()
	if c.inFlight > 0 {
		c.mu.Unlock()
		c.log.Debug().Msg("message ignored while busy")
		return
	}
	history := make([]domain.ChatMessage, len(c.state.Messages))
	copy(history, c.state.Messages)
	module := c.module
	c.state.Messages = append(c.state.Messages, c.newMessage(domain.RoleUser, text))
	c.inFlight++
	c.recorder.ObserveTransition("submit_message")
	c.mu.Unlock()

	reply, err := c.advisor.Chat(ctx, module, history, text)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight--
	if err != nil {
		c.fail(advisor.OperationChat, err)
		return
	}
	c.state.Messages = append(c.state.Messages, c.newMessage(domain.RoleModel, reply))
	c.clearNotice(advisor.OperationChat)
	c.recorder.ObserveTransition("chat_reply")
}

// RequestCharter regenerates the charter from the whole conversation and
// shows it. Only the most recently issued request may replace the charter.
func (c *Controller) RequestCharter(ctx context.Context) {
	c.mu.Lock()
	c.charterGen++
	ticket := c.charterGen
	c.inFlight++
	transcript := domain.Transcript(c.state.Messages)
	c.mu.Unlock()

	charter, err := c.advisor.GenerateCharter(ctx, transcript)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight--
	if ticket != c.charterGen {
		c.discardStale(advisor.OperationCharter, ticket, c.charterGen, err)
		return
	}
	if err != nil {
		c.fail(advisor.OperationCharter, err)
		return
	}
	c.state.CurrentCharter = &charter
	c.view = domain.ViewCharter
	c.clearNotice(advisor.OperationCharter)
	c.recorder.ObserveTransition("charter_replaced")
}

// RequestStakeholders regenerates the stakeholder register from the whole
// conversation and shows it. Only the most recently issued request may
// replace the register.
func (c *Controller) RequestStakeholders(ctx context.Context) {
	c.mu.Lock()
	c.stakeholdersGen++
	ticket := c.stakeholdersGen
	c.inFlight++
	transcript := domain.Transcript(c.state.Messages)
	c.mu.Unlock()

	list, err := c.advisor.GenerateStakeholders(ctx, transcript)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight--
	if ticket != c.stakeholdersGen {
		c.discardStale(advisor.OperationStakeholders, ticket, c.stakeholdersGen, err)
		return
	}
	if err != nil {
		c.fail(advisor.OperationStakeholders, err)
		return
	}
	c.state.Stakeholders = list
	c.view = domain.ViewStakeholders
	c.clearNotice(advisor.OperationStakeholders)
	c.recorder.ObserveTransition("stakeholders_replaced")
}

// fail must be called with c.mu held.
func (c *Controller) fail(op string, err error) {
	c.log.Error().Err(err).Str("operation", op).Str("code", string(advisor.CodeOf(err))).Msg("advisor call failed")
	c.notice = newNotice(op, err, c.now())
	c.recorder.ObserveTransition("notice_raised")
}

func (c *Controller) discardStale(op string, ticket, latest uint64, err error) {
	ev := c.log.Info().Str("operation", op).Uint64("ticket", ticket).Uint64("latest", latest)
	if err != nil {
		ev = ev.AnErr("discarded_error", err)
	}
	ev.Msg("stale response discarded")
	c.recorder.ObserveTransition("stale_discarded")
}

func (c *Controller) clearNotice(op string) {
	if c.notice != nil && c.notice.Operation == op {
		c.notice = nil
	}
}

var newUUID = func() string {
	return uuid.NewString()
}
