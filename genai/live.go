// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package genai

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wavybaby5280/js-genai-wavy-sub000/genai/internal/gensupport"
)

// Live opens bidirectional streaming sessions with a model.
type Live struct {
	ac *apiClient
}

// Connect opens a live session with model.
//
// The setup message built from config is sent as soon as the connection is
// open, before Connect returns, so it is always the first message of the
// session. Connect fails if ctx is done or the connection closes before it
// opens. In both cases the connection is released.
func (l *Live) Connect(ctx context.Context, model string, config *LiveConnectConfig) (*Session, error) {
	ac := l.ac
	qualified, err := tLiveModel(ac.backend, ac.project, ac.location, model)
	if err != nil {
		return nil, err
	}
	setup := &LiveClientMessage{Setup: liveSetup(ac.backend, qualified, config, ac.logger)}
	// Validate the setup before dialing.
	if _, err := setup.toWire(ac.backend); err != nil {
		return nil, err
	}
	u, err := ac.liveURL()
	if err != nil {
		return nil, err
	}
	headers := gensupport.SetHeaders(gensupport.LibraryLabel(), "application/json", ac.httpOptions.Headers)
	if ac.isVertexAI() && ac.auth != nil {
		if err := ac.auth.AddAuthHeaders(ctx, headers); err != nil {
			return nil, fmt.Errorf("genai: authenticating live session: %w", err)
		}
	}

	s := newSession(ac)
	s.conn = ac.wsFactory.Create(u, headers, s.callbacks())
	s.logger.Debug("live session connecting", "model", qualified)
	s.conn.Connect()
	select {
	case <-s.opened:
	case <-s.done:
		s.conn.Close()
		return nil, fmt.Errorf("genai: live connection closed before it opened: %w", s.closeErrOrEOF())
	case <-ctx.Done():
		s.Close()
		return nil, ctx.Err()
	}
	if err := s.send(setup); err != nil {
		s.Close()
		return nil, err
	}
	s.logger.Info("live session opened", "model", qualified)
	return s, nil
}

// liveURL returns the WebSocket endpoint. The scheme of the base URL is
// mapped to ws or wss. The Gemini API takes the API key as a query
// parameter.
func (ac *apiClient) liveURL() (string, error) {
	u, err := url.Parse(ac.httpOptions.BaseURL)
	if err != nil {
		return "", fmt.Errorf("genai: invalid base URL: %w", err)
	}
	if u.Scheme == "http" {
		u.Scheme = "ws"
	} else {
		u.Scheme = "wss"
	}
	base := strings.TrimSuffix(u.String(), "/")
	v := ac.httpOptions.APIVersion
	if ac.isVertexAI() {
		return fmt.Sprintf("%s/ws/google.cloud.aiplatform.%s.LlmBidiService/BidiGenerateContent", base, v), nil
	}
	return fmt.Sprintf("%s/ws/google.ai.generativelanguage.%s.GenerativeService.BidiGenerateContent?key=%s",
		base, v, url.QueryEscape(ac.apiKey)), nil
}

// A Session is an open live connection.
//
// Messages from the server are queued in arrival order until read with
// Receive. The queue is unbounded. Send methods may be called from any
// goroutine; Receive should be called from one goroutine at a time.
type Session struct {
	id     string
	ac     *apiClient
	conn   WebSocket
	logger *slog.Logger

	opened   chan struct{}
	openOnce sync.Once
	done     chan struct{}
	doneOnce sync.Once
	notify   chan struct{}

	mu       sync.Mutex // guards the fields below
	queue    []liveEvent
	closed   bool
	closeErr error

	sendMu sync.Mutex
}

// liveEvent is a decoded server message or the error decoding it.
type liveEvent struct {
	msg *LiveServerMessage
	err error
}

func newSession(ac *apiClient) *Session {
	id := uuid.NewString()
	return &Session{
		id:     id,
		ac:     ac,
		logger: ac.logger.With("session", id),
		opened: make(chan struct{}),
		done:   make(chan struct{}),
		notify: make(chan struct{}, 1),
	}
}

// ID returns a client-side identifier for the session, for logging.
func (s *Session) ID() string { return s.id }

func (s *Session) callbacks() WebSocketCallbacks {
	return WebSocketCallbacks{
		OnOpen: func() {
			s.openOnce.Do(func() { close(s.opened) })
		},
		OnMessage: s.onMessage,
		OnError: func(err error) {
			s.logger.Warn("live connection error", "err", err)
			s.mu.Lock()
			if !s.closed && s.closeErr == nil {
				s.closeErr = err
			}
			s.mu.Unlock()
		},
		OnClose: s.onClose,
	}
}

func (s *Session) onMessage(data []byte) {
	ev := liveEvent{}
	var w wireLiveServerMessage
	if err := sonic.ConfigStd.Unmarshal(data, &w); err != nil {
		ev.err = &ProtocolError{Reason: "live message is not valid JSON", Frame: string(data), Err: err}
	} else {
		ev.msg, ev.err = (LiveServerMessage{}).fromWire(s.ac.backend, &w)
	}
	if ev.err != nil {
		s.logger.Warn("live message dropped", "err", ev.err)
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, ev)
	s.mu.Unlock()
	s.wake()
}

func (s *Session) onClose(code int, reason string) {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		if s.closeErr == nil && code != websocket.CloseNormalClosure {
			s.closeErr = fmt.Errorf("genai: live connection closed: %d %s", code, reason)
		}
	}
	s.mu.Unlock()
	s.logger.Debug("live session closed", "code", code, "reason", reason)
	s.doneOnce.Do(func() { close(s.done) })
	s.wake()
}

func (s *Session) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Session) closeErrOrEOF() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closeErr != nil {
		return s.closeErr
	}
	return io.EOF
}

// Receive returns the next message from the server, waiting until one
// arrives or ctx is done. A message that could not be decoded is returned
// as a [*ProtocolError]; later messages are unaffected.
//
// Once the session is closed and every queued message has been returned,
// Receive returns io.EOF, or the error that closed the connection.
func (s *Session) Receive(ctx context.Context) (*LiveServerMessage, error) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			ev := s.queue[0]
			s.queue[0] = liveEvent{}
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return ev.msg, ev.err
		}
		if s.closed {
			err := s.closeErr
			s.mu.Unlock()
			if err == nil {
				err = io.EOF
			}
			return nil, err
		}
		s.mu.Unlock()
		select {
		case <-s.notify:
		case <-s.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// SendClientContent appends turns to the conversation. If in.TurnComplete
// is nil the server starts generating a response.
func (s *Session) SendClientContent(in LiveClientContentInput) error {
	msg, err := liveClientContent(in)
	if err != nil {
		return err
	}
	return s.send(msg)
}

// SendRealtimeInput streams a chunk of media to the model.
func (s *Session) SendRealtimeInput(in LiveRealtimeInput) error {
	msg, err := liveRealtimeInput(in)
	if err != nil {
		return err
	}
	return s.send(msg)
}

// SendToolResponse answers tool calls made by the model. On the Gemini API
// each response must carry the ID of the [FunctionCall] it answers.
func (s *Session) SendToolResponse(in LiveToolResponseInput) error {
	msg, err := liveToolResponse(s.ac.backend, in)
	if err != nil {
		return err
	}
	return s.send(msg)
}

func (s *Session) send(msg *LiveClientMessage) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrSessionClosed
	}
	w, err := msg.toWire(s.ac.backend)
	if err != nil {
		return err
	}
	data, err := sonic.ConfigStd.Marshal(w)
	if err != nil {
		return fmt.Errorf("genai: encoding live message: %w", err)
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := s.conn.Send(data); err != nil {
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return ErrSessionClosed
		}
		return fmt.Errorf("genai: sending live message: %w", err)
	}
	return nil
}

// Close closes the session. Messages already queued can still be read with
// Receive. Sends after Close fail with [ErrSessionClosed].
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	err := s.conn.Close()
	s.doneOnce.Do(func() { close(s.done) })
	s.wake()
	return err
}
