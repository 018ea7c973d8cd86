package chat

import (
	"context"
	"sync"
	"time"

	"peerchat/broadcast"
	"peerchat/errors"
	"peerchat/global"

	jsoniter "github.com/json-iterator/go"
)

// typingSignal is the payload broadcast on every local input change
type typingSignal struct {
	SenderID string
}

// PresenceNotifier broadcasts and receives ephemeral typing signals on one
// conversation's channel. A received signal keeps the indicator alive for
// the typing window; each new signal resets the timer instead of stacking.
type PresenceNotifier struct {
	channel  broadcast.Channel
	userID   string
	friendID string
	window   time.Duration

	mu     sync.Mutex
	typing bool
	timer  *time.Timer
	sub    *broadcast.Subscription

	// OnChange fires when the indicator flips
	OnChange func(typing bool)
}

// NewPresenceNotifier builds the notifier for one open conversation
func NewPresenceNotifier(channel broadcast.Channel, userID string, friendID string) *PresenceNotifier {
	return &PresenceNotifier{
		channel:  channel,
		userID:   userID,
		friendID: friendID,
		window:   global.TypingWindow,
	}
}

// Start subscribes to the conversation's typing signals
func (p *PresenceNotifier) Start() error {
	sub, err := p.channel.On("typing", p.receive)
	if err != nil {
		return errors.New(errors.Store, "typing", err.Error())
	}

	p.mu.Lock()
	p.sub = sub
	p.mu.Unlock()
	return nil
}

// Stop releases the subscription and clears the indicator
func (p *PresenceNotifier) Stop() {
	p.mu.Lock()
	sub := p.sub
	p.sub = nil
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.typing = false
	p.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
}

// NotifyTyping broadcasts the local typing signal, fire-and-forget
func (p *PresenceNotifier) NotifyTyping(ctx context.Context) {
	payload, err := jsoniter.Marshal(typingSignal{SenderID: p.userID})
	if err != nil {
		return
	}
	if err = p.channel.Send(ctx, "typing", payload); err != nil {
		errors.HandleBasicError(err)
	}
}

func (p *PresenceNotifier) receive(payload []byte) {
	var signal typingSignal
	if err := jsoniter.Unmarshal(payload, &signal); err != nil {
		return
	}
	if signal.SenderID != p.friendID {
		return
	}

	p.mu.Lock()
	flipped := !p.typing
	p.typing = true
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.window, p.expire)
	onChange := p.OnChange
	p.mu.Unlock()

	if flipped && onChange != nil {
		onChange(true)
	}
}

func (p *PresenceNotifier) expire() {
	p.mu.Lock()
	flipped := p.typing
	p.typing = false
	p.timer = nil
	onChange := p.OnChange
	p.mu.Unlock()

	if flipped && onChange != nil {
		onChange(false)
	}
}

// Typing reports whether the friend typed within the last window
func (p *PresenceNotifier) Typing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.typing
}
