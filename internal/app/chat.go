package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/bnema/pot-cli/internal/domain"
	"github.com/bnema/pot-cli/internal/ports"
)

const chatPollOwner = "chat"

var errNoPeer = errors.New("select a peer first")

// ChatView is private messaging between matched attendees. It is only live with a
// session; without one it shows the sign-in prompt and sends nothing.
type ChatView struct {
	app          *App
	interval     time.Duration
	peerInterval time.Duration
	clock        ports.Clock

	mu           sync.Mutex
	activePeer   domain.UserID
	peersFetched time.Time
}

// Enter returns the job that starts polling. It runs outside the router's transition
// lock because Start waits for the previous poll, and that poll may be reloading the
// route after the server rejected the token.
func (v *ChatView) Enter(context.Context) func(context.Context) {
	if !v.app.Session.Current().Authenticated() {
		return nil
	}

	return func(scope context.Context) {
		v.mu.Lock()
		v.peersFetched = time.Time{}
		v.mu.Unlock()

		v.app.Scheduler.Start(scope, chatPollOwner, v.interval, v.poll)
	}
}

func (*ChatView) Exit() {}

// RequiresAuth reports whether the view shows the sign-in prompt.
func (v *ChatView) RequiresAuth() bool {
	return !v.app.Session.Current().Authenticated()
}

// poll refreshes the active conversation every tick and the peer list when it is older
// than peerInterval.
func (v *ChatView) poll(ctx context.Context) {
	v.mu.Lock()
	peer := v.activePeer
	refreshPeers := v.peersFetched.IsZero() || v.clock.Now().Sub(v.peersFetched) >= v.peerInterval
	v.mu.Unlock()

	if refreshPeers {
		if _, err := v.app.Cache.LoadPeers(ctx); err == nil {
			v.mu.Lock()
			v.peersFetched = v.clock.Now()
			v.mu.Unlock()
		}
	}
	if peer != "" && ctx.Err() == nil {
		_, _ = v.app.Cache.LoadMessages(ctx, peer)
	}
}

func (v *ChatView) ActivePeer() domain.UserID {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.activePeer
}

// SelectPeer switches the conversation and loads it right away.
func (v *ChatView) SelectPeer(ctx context.Context, peer domain.UserID) error {
	v.mu.Lock()
	v.activePeer = peer
	v.mu.Unlock()
	v.app.changed()

	if peer == "" {
		return nil
	}
	_, err := v.app.Cache.LoadMessages(ctx, peer)
	return err
}

// Send posts body to the active peer. Blank messages are ignored.
func (v *ChatView) Send(ctx context.Context, body string) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}
	peer := v.ActivePeer()
	if peer == "" {
		v.app.Notify.Show(errNoPeer.Error(), true)
		return errNoPeer
	}

	if err := v.app.API.SendMessage(ctx, peer, body); err != nil {
		v.app.Notify.Show(failureMessage(err, "Message not sent"), true)
		return err
	}

	_, _ = v.app.Cache.LoadMessages(ctx, peer)
	_, _ = v.app.Cache.LoadPeers(ctx)
	return nil
}

// Mine reports whether message was sent by the signed-in user.
func (v *ChatView) Mine(message domain.ChatMessage) bool {
	return message.FromUserID != "" && message.FromUserID == v.app.Session.Current().UserID()
}

func (v *ChatView) reset() {
	v.mu.Lock()
	v.activePeer = ""
	v.peersFetched = time.Time{}
	v.mu.Unlock()
}
