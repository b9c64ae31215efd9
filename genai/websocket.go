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
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketCallbacks receive the events of a [WebSocket]. They are called
// from a single goroutine, in order: OnOpen at most once, then OnMessage for
// each message, then OnClose exactly once. OnError may precede OnClose.
type WebSocketCallbacks struct {
	OnOpen    func()
	OnMessage func(data []byte)
	OnError   func(err error)
	OnClose   func(code int, reason string)
}

// WebSocket is a client connection used by live sessions.
type WebSocket interface {
	// Connect starts opening the connection and returns immediately.
	Connect()
	// Send writes one text message. It may be called concurrently with
	// Close but not with itself.
	Send(data []byte) error
	// Close closes the connection. It is safe to call more than once.
	Close() error
}

// WebSocketFactory creates WebSockets. Supplying one in [ClientConfig] lets
// tests and alternative transports replace the default.
type WebSocketFactory interface {
	Create(url string, headers http.Header, callbacks WebSocketCallbacks) WebSocket
}

// NewWebSocketFactory returns a [WebSocketFactory] that dials with d, or
// with [websocket.DefaultDialer] if d is nil.
func NewWebSocketFactory(d *websocket.Dialer) WebSocketFactory {
	if d == nil {
		d = websocket.DefaultDialer
	}
	return gorillaFactory{dialer: d}
}

type gorillaFactory struct {
	dialer *websocket.Dialer
}

func (f gorillaFactory) Create(url string, headers http.Header, cb WebSocketCallbacks) WebSocket {
	if cb.OnOpen == nil {
		cb.OnOpen = func() {}
	}
	if cb.OnMessage == nil {
		cb.OnMessage = func([]byte) {}
	}
	if cb.OnError == nil {
		cb.OnError = func(error) {}
	}
	if cb.OnClose == nil {
		cb.OnClose = func(int, string) {}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &gorillaSocket{
		dialer:  f.dialer,
		url:     url,
		headers: headers,
		cb:      cb,
		ctx:     ctx,
		cancel:  cancel,
	}
}

type gorillaSocket struct {
	dialer  *websocket.Dialer
	url     string
	headers http.Header
	cb      WebSocketCallbacks
	ctx     context.Context
	cancel  context.CancelFunc

	mu     sync.Mutex // guards conn and closed
	conn   *websocket.Conn
	closed bool
}

var errSocketNotOpen = errors.New("genai: websocket is not open")

func (s *gorillaSocket) Connect() {
	go s.run()
}

func (s *gorillaSocket) run() {
	conn, res, err := s.dialer.DialContext(s.ctx, s.url, s.headers)
	if res != nil && res.Body != nil {
		res.Body.Close()
	}
	if err != nil {
		if s.isClosed() {
			s.cb.OnClose(websocket.CloseNormalClosure, "")
			return
		}
		s.cb.OnError(err)
		s.cb.OnClose(websocket.CloseAbnormalClosure, err.Error())
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		s.cb.OnClose(websocket.CloseNormalClosure, "")
		return
	}
	s.conn = conn
	s.mu.Unlock()
	defer conn.Close()

	s.cb.OnOpen()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			var ce *websocket.CloseError
			switch {
			case errors.As(err, &ce):
				s.cb.OnClose(ce.Code, ce.Text)
			case s.isClosed():
				s.cb.OnClose(websocket.CloseNormalClosure, "")
			default:
				s.cb.OnError(err)
				s.cb.OnClose(websocket.CloseAbnormalClosure, err.Error())
			}
			return
		}
		s.cb.OnMessage(data)
	}
}

func (s *gorillaSocket) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *gorillaSocket) Send(data []byte) error {
	s.mu.Lock()
	conn, closed := s.conn, s.closed
	s.mu.Unlock()
	if closed || conn == nil {
		return errSocketNotOpen
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (s *gorillaSocket) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	conn := s.conn
	s.mu.Unlock()

	s.cancel()
	if conn == nil {
		return nil
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return conn.Close()
}
