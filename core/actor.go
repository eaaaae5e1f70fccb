package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// actor implements the Actor interface.
type actor struct {
	id      ActorID
	name    string
	handler MessageHandler
	logger  *slog.Logger

	// Channel for receiving messages
	mailbox chan *Message

	// Cancelled by Stop to end the message loop
	ctx    context.Context
	cancel context.CancelFunc

	// Closed when the message loop has exited
	done chan struct{}

	// sendMu orders submissions against the transition to stopping, so
	// nothing can land in the mailbox after it has been drained
	sendMu  sync.RWMutex
	started bool

	// Atomic counters for statistics
	state             int32 // ActorState
	messagesProcessed uint64
	messageCounter    uint64
	createdAt         time.Time
	lastMessageAt     int64 // UnixNano

	// Pending calls for synchronous communication
	pendingCalls   sync.Map // map[uint32]chan *Message
	sessionCounter uint32

	opts ActorOptions
}

// NewActor creates a new Actor instance. The Actor does not process
// messages until Start is called, but Send already queues them.
func NewActor(id ActorID, handler MessageHandler, opts ActorOptions) Actor {
	ctx, cancel := context.WithCancel(context.Background())

	if opts.MailboxSize <= 0 {
		opts.MailboxSize = DefaultActorOptions().MailboxSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	a := &actor{
		id:        id,
		name:      opts.Name,
		handler:   handler,
		logger:    logger.With("actor", id, "name", opts.Name),
		mailbox:   make(chan *Message, opts.MailboxSize),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		createdAt: time.Now(),
		opts:      opts,
	}

	atomic.StoreInt32(&a.state, int32(ActorStateIdle))

	return a
}

// ID returns the unique identifier of this Actor.
func (a *actor) ID() ActorID {
	return a.id
}

// Start begins the Actor's message processing loop. Cancelling ctx stops
// the Actor as if Stop had been called.
func (a *actor) Start(ctx context.Context) error {
	a.sendMu.Lock()
	defer a.sendMu.Unlock()

	if a.stoppingLocked() {
		return fmt.Errorf("actor %d: %w", a.id, ErrActorStopped)
	}
	if a.started {
		return fmt.Errorf("actor %d: %w", a.id, ErrActorStarted)
	}
	a.started = true

	go a.messageLoop(ctx)

	return nil
}

// Stop shuts the Actor down after applying every message already accepted.
// A second Stop waits for the first to finish and reports ErrActorStopped.
func (a *actor) Stop() error {
	a.sendMu.Lock()
	if a.stoppingLocked() {
		a.sendMu.Unlock()
		<-a.done
		return fmt.Errorf("actor %d: %w", a.id, ErrActorStopped)
	}
	atomic.StoreInt32(&a.state, int32(ActorStateStopping))
	started := a.started
	a.sendMu.Unlock()

	a.cancel()

	if started {
		<-a.done
	} else {
		// No loop ever ran; apply what Send queued before Start.
		a.drainMailbox()
		close(a.done)
	}

	atomic.StoreInt32(&a.state, int32(ActorStateStopped))
	return nil
}

// Send enqueues a message without waiting for it to be processed.
func (a *actor) Send(msg *Message) error {
	if msg == nil {
		return fmt.Errorf("actor %d: cannot send nil message", a.id)
	}

	a.sendMu.RLock()
	defer a.sendMu.RUnlock()

	if a.stoppingLocked() {
		return fmt.Errorf("actor %d: %w", a.id, ErrActorStopped)
	}

	msg.ID = atomic.AddUint64(&a.messageCounter, 1)
	msg.Target = a.id

	select {
	case a.mailbox <- msg:
		return nil
	default:
		return fmt.Errorf("actor %d: %w", a.id, ErrMailboxFull)
	}
}

// Call enqueues a message and waits for the handler's result.
func (a *actor) Call(ctx context.Context, msg *Message) (*Message, error) {
	if msg == nil {
		return nil, fmt.Errorf("actor %d: cannot call with nil message", a.id)
	}

	session := atomic.AddUint32(&a.sessionCounter, 1)
	if session == 0 {
		session = atomic.AddUint32(&a.sessionCounter, 1)
	}
	msg.Session = session

	respChan := make(chan *Message, 1)
	a.pendingCalls.Store(session, respChan)
	defer a.pendingCalls.Delete(session)

	if err := a.Send(msg); err != nil {
		return nil, err
	}

	select {
	case resp := <-respChan:
		return resp, resp.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-a.done:
		// The loop may have answered just before exiting.
		select {
		case resp := <-respChan:
			return resp, resp.Err
		default:
			return nil, fmt.Errorf("actor %d: %w", a.id, ErrActorStopped)
		}
	}
}

// Stats returns current runtime statistics for this Actor.
func (a *actor) Stats() ActorStats {
	var lastMessageAt time.Time
	if last := atomic.LoadInt64(&a.lastMessageAt); last > 0 {
		lastMessageAt = time.Unix(0, last)
	}

	return ActorStats{
		ID:                a.id,
		Name:              a.name,
		State:             ActorState(atomic.LoadInt32(&a.state)),
		MessagesProcessed: atomic.LoadUint64(&a.messagesProcessed),
		Queued:            len(a.mailbox),
		CreatedAt:         a.createdAt,
		LastMessageAt:     lastMessageAt,
	}
}

func (a *actor) stoppingLocked() bool {
	state := ActorState(atomic.LoadInt32(&a.state))
	return state == ActorStateStopping || state == ActorStateStopped
}

// messageLoop is the main processing loop for the Actor.
func (a *actor) messageLoop(parent context.Context) {
	defer close(a.done)

	parentDone := parent.Done()
	for {
		select {
		case msg := <-a.mailbox:
			a.processMessage(msg)

		case <-parentDone:
			parentDone = nil
			go a.Stop()

		case <-a.ctx.Done():
			a.drainMailbox()
			return
		}
	}
}

// processMessage handles a single message and answers a pending Call.
func (a *actor) processMessage(msg *Message) {
	if atomic.CompareAndSwapInt32(&a.state, int32(ActorStateIdle), int32(ActorStateRunning)) {
		defer atomic.CompareAndSwapInt32(&a.state, int32(ActorStateRunning), int32(ActorStateIdle))
	}

	atomic.AddUint64(&a.messagesProcessed, 1)
	atomic.StoreInt64(&a.lastMessageAt, time.Now().UnixNano())

	result, err := a.invoke(msg)

	if msg.Session != 0 {
		a.sendResponse(msg, result, err)
		return
	}
	if err != nil {
		a.logger.Debug("message handler failed", "message", msg.ID, "error", err)
	}
}

// invoke runs the handler, converting a panic into ErrHandlerPanic.
func (a *actor) invoke(msg *Message) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("message handler panicked", "message", msg.ID, "panic", r)
			err = fmt.Errorf("actor %d: %w: %v", a.id, ErrHandlerPanic, r)
		}
	}()

	// Stop must not abort a message that was already accepted.
	ctx := context.Background()
	if a.opts.ProcessTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.ProcessTimeout)
		defer cancel()
	}

	return a.handler.HandleMessage(ctx, msg)
}

// sendResponse sends a response message for a call.
func (a *actor) sendResponse(request *Message, result interface{}, err error) {
	respChan, ok := a.pendingCalls.Load(request.Session)
	if !ok {
		// Caller gave up waiting.
		return
	}

	resp := &Message{
		Type:      MessageTypeResponse,
		Source:    a.id,
		Target:    request.Source,
		Session:   request.Session,
		Payload:   result,
		Timestamp: time.Now(),
	}
	if err != nil {
		resp.Type = MessageTypeError
		resp.Err = err
	}

	select {
	case respChan.(chan *Message) <- resp:
	default:
	}
}

// drainMailbox applies the messages accepted before Stop.
func (a *actor) drainMailbox() {
	for {
		select {
		case msg := <-a.mailbox:
			a.processMessage(msg)
		default:
			return
		}
	}
}
