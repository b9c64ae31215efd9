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
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

// fakeFactory creates fakeSockets. By default a socket opens as soon as
// Connect is called.
type fakeFactory struct {
	connect func(*fakeSocket)

	mu      sync.Mutex
	sockets []*fakeSocket
}

func (f *fakeFactory) Create(url string, headers http.Header, cb WebSocketCallbacks) WebSocket {
	s := &fakeSocket{factory: f, url: url, headers: headers, cb: cb}
	f.mu.Lock()
	f.sockets = append(f.sockets, s)
	f.mu.Unlock()
	return s
}

func (f *fakeFactory) created() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sockets)
}

func (f *fakeFactory) socket(t *testing.T) *fakeSocket {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sockets) != 1 {
		t.Fatalf("got %d sockets, want 1", len(f.sockets))
	}
	return f.sockets[0]
}

type fakeSocket struct {
	factory *fakeFactory
	url     string
	headers http.Header
	cb      WebSocketCallbacks

	// beforeSend, if set, runs at the start of each Send.
	beforeSend func()

	mu     sync.Mutex
	sent   []string
	closed bool
}

func (s *fakeSocket) Connect() {
	if s.factory.connect != nil {
		s.factory.connect(s)
		return
	}
	s.cb.OnOpen()
}

func (s *fakeSocket) Send(data []byte) error {
	if s.beforeSend != nil {
		s.beforeSend()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errSocketNotOpen
	}
	s.sent = append(s.sent, string(data))
	return nil
}

func (s *fakeSocket) Close() error {
	s.serverClose(websocket.CloseNormalClosure, "")
	return nil
}

// serverClose closes the socket as if the peer had sent a close frame.
func (s *fakeSocket) serverClose(code int, reason string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.cb.OnClose(code, reason)
}

func (s *fakeSocket) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *fakeSocket) deliver(msg string) {
	s.cb.OnMessage([]byte(msg))
}

// frames returns the messages sent so far, decoded.
func (s *fakeSocket) frames(t *testing.T) []map[string]any {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []map[string]any
	for _, m := range s.sent {
		var v map[string]any
		if err := json.Unmarshal([]byte(m), &v); err != nil {
			t.Fatalf("sent frame %q is not JSON: %v", m, err)
		}
		out = append(out, v)
	}
	return out
}

func newLiveClient(t *testing.T, backend Backend, f WebSocketFactory, baseURL string) *Client {
	t.Helper()
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	cc := &ClientConfig{Backend: backend, WebSocketFactory: f}
	if baseURL != "" {
		cc.HTTPOptions.BaseURL = baseURL
	}
	if backend == BackendVertexAI {
		cc.Project = "p"
		cc.Location = "us-central1"
		cc.TokenSource = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"})
	} else {
		cc.APIKey = "test-key"
	}
	client, err := NewClient(context.Background(), cc)
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func connect(t *testing.T, backend Backend, config *LiveConnectConfig) (*Session, *fakeSocket) {
	t.Helper()
	f := &fakeFactory{}
	client := newLiveClient(t, backend, f, "")
	s, err := client.Live.Connect(context.Background(), "gemini-live", config)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s, f.socket(t)
}

func TestLiveConnectGemini(t *testing.T) {
	s, sock := connect(t, BackendMLDev, &LiveConnectConfig{
		SystemInstruction: NewUserContent(Text("Be brief.")),
		Temperature:       Ptr[float32](0.5),
	})
	if s.ID() == "" {
		t.Error("empty session ID")
	}
	wantURL := "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent?key=test-key"
	if sock.url != wantURL {
		t.Errorf("url = %q, want %q", sock.url, wantURL)
	}
	if g := sock.headers.Get("Authorization"); g != "" {
		t.Errorf("Authorization = %q, want none", g)
	}
	if g := sock.headers.Get("User-Agent"); !strings.HasPrefix(g, "google-genai-sdk/") {
		t.Errorf("User-Agent = %q", g)
	}
	want := []map[string]any{{
		"setup": map[string]any{
			"model":             "models/gemini-live",
			"generationConfig":  map[string]any{"temperature": 0.5},
			"systemInstruction": map[string]any{"role": "user", "parts": []any{map[string]any{"text": "Be brief."}}},
		},
	}}
	if diff := cmp.Diff(want, sock.frames(t)); diff != "" {
		t.Errorf("frames mismatch (-want, +got):\n%s", diff)
	}
}

func TestLiveConnectVertex(t *testing.T) {
	_, sock := connect(t, BackendVertexAI, nil)
	wantURL := "wss://us-central1-aiplatform.googleapis.com/ws/google.cloud.aiplatform.v1beta1.LlmBidiService/BidiGenerateContent"
	if sock.url != wantURL {
		t.Errorf("url = %q, want %q", sock.url, wantURL)
	}
	if g := sock.headers.Get("Authorization"); g != "Bearer tok" {
		t.Errorf("Authorization = %q", g)
	}
	want := []map[string]any{{
		"setup": map[string]any{
			"model":            "projects/p/locations/us-central1/publishers/google/models/gemini-live",
			"generationConfig": map[string]any{"responseModalities": []any{"AUDIO"}},
		},
	}}
	if diff := cmp.Diff(want, sock.frames(t)); diff != "" {
		t.Errorf("frames mismatch (-want, +got):\n%s", diff)
	}
}

func TestLiveSetupOptions(t *testing.T) {
	_, sock := connect(t, BackendVertexAI, &LiveConnectConfig{
		GenerationConfig:         &GenerationConfig{MaxOutputTokens: 10, TopK: Ptr[float32](3)},
		ResponseModalities:       []Modality{ModalityText},
		MaxOutputTokens:          20,
		SessionResumption:        &SessionResumptionConfig{Handle: "h", Transparent: true},
		ContextWindowCompression: &ContextWindowCompressionConfig{TriggerTokens: Ptr[int64](1000), SlidingWindow: &SlidingWindow{TargetTokens: Ptr[int64](500)}},
		InputAudioTranscription:  &AudioTranscriptionConfig{},
	})
	want := map[string]any{
		"model": "projects/p/locations/us-central1/publishers/google/models/gemini-live",
		"generationConfig": map[string]any{
			"responseModalities": []any{"TEXT"},
			"maxOutputTokens":    20.0,
			"topK":               3.0,
		},
		"sessionResumption":        map[string]any{"handle": "h", "transparent": true},
		"contextWindowCompression": map[string]any{"triggerTokens": "1000", "slidingWindow": map[string]any{"targetTokens": "500"}},
		"inputAudioTranscription":  map[string]any{},
	}
	if diff := cmp.Diff(want, sock.frames(t)[0]["setup"]); diff != "" {
		t.Errorf("setup mismatch (-want, +got):\n%s", diff)
	}
}

func TestLiveSetupRejectedBeforeDial(t *testing.T) {
	f := &fakeFactory{}
	client := newLiveClient(t, BackendMLDev, f, "")
	_, err := client.Live.Connect(context.Background(), "gemini-live", &LiveConnectConfig{
		SessionResumption: &SessionResumptionConfig{Transparent: true},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want *ValidationError", err)
	}
	if n := f.created(); n != 0 {
		t.Errorf("created %d sockets, want 0", n)
	}
}

func TestLiveConnectCanceled(t *testing.T) {
	f := &fakeFactory{connect: func(*fakeSocket) {}} // never opens
	client := newLiveClient(t, BackendMLDev, f, "")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.Live.Connect(ctx, "gemini-live", nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v, want context.DeadlineExceeded", err)
	}
	sock := f.socket(t)
	if !sock.isClosed() {
		t.Error("socket not released")
	}
	if frames := sock.frames(t); len(frames) != 0 {
		t.Errorf("sent %v, want nothing", frames)
	}
}

func TestLiveConnectFails(t *testing.T) {
	dialErr := errors.New("connection refused")
	f := &fakeFactory{connect: func(s *fakeSocket) {
		s.cb.OnError(dialErr)
		s.serverClose(websocket.CloseAbnormalClosure, dialErr.Error())
	}}
	client := newLiveClient(t, BackendMLDev, f, "")
	_, err := client.Live.Connect(context.Background(), "gemini-live", nil)
	if !errors.Is(err, dialErr) {
		t.Errorf("got %v, want %v", err, dialErr)
	}
}

func TestLiveSend(t *testing.T) {
	s, sock := connect(t, BackendMLDev, nil)
	if err := s.SendClientContent(LiveClientContentInput{}); err != nil {
		t.Fatal(err)
	}
	if err := s.SendClientContent(LiveClientContentInput{
		Turns:        []*Content{NewUserContent(Text("hi"))},
		TurnComplete: Ptr(false),
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.SendRealtimeInput(LiveRealtimeInput{Media: &Blob{MIMEType: "audio/pcm", Data: []byte{1, 2}}}); err != nil {
		t.Fatal(err)
	}
	if err := s.SendToolResponse(LiveToolResponseInput{FunctionResponses: []*FunctionResponse{
		{ID: "c1", Name: "f", Response: map[string]any{"ok": true}},
	}}); err != nil {
		t.Fatal(err)
	}
	if err := s.SendToolResponse(LiveToolResponseInput{FunctionResponses: []*FunctionResponse{
		{ID: "c2", Name: "g", Response: map[string]any{}},
	}}); err != nil {
		t.Fatal(err)
	}

	// Invalid input is rejected without writing anything.
	var verr *ValidationError
	if err := s.SendRealtimeInput(LiveRealtimeInput{}); !errors.As(err, &verr) {
		t.Errorf("realtime input without media: got %v, want *ValidationError", err)
	}
	err := s.SendToolResponse(LiveToolResponseInput{FunctionResponses: []*FunctionResponse{{Name: "f", Response: map[string]any{}}}})
	if !errors.Is(err, ErrFunctionResponseID) || !errors.As(err, &verr) {
		t.Errorf("tool response without id: got %v, want ErrFunctionResponseID", err)
	}
	if err := s.SendClientContent(LiveClientContentInput{Turns: []*Content{nil}}); !errors.As(err, &verr) {
		t.Errorf("nil turn: got %v, want *ValidationError", err)
	}

	want := []map[string]any{
		{"clientContent": map[string]any{"turnComplete": true}},
		{"clientContent": map[string]any{"turns": []any{map[string]any{"role": "user", "parts": []any{map[string]any{"text": "hi"}}}}}},
		{"realtimeInput": map[string]any{"mediaChunks": []any{map[string]any{"mimeType": "audio/pcm", "data": "AQI="}}}},
		{"toolResponse": map[string]any{"functionResponses": []any{map[string]any{"id": "c1", "name": "f", "response": map[string]any{"ok": true}}}}},
		{"toolResponse": map[string]any{"functionResponses": []any{map[string]any{"id": "c2", "name": "g", "response": map[string]any{}}}}},
	}
	if diff := cmp.Diff(want, sock.frames(t)[1:]); diff != "" {
		t.Errorf("frames mismatch (-want, +got):\n%s", diff)
	}
}

func TestLiveVertexToolResponse(t *testing.T) {
	s, sock := connect(t, BackendVertexAI, nil)
	if err := s.SendToolResponse(LiveToolResponseInput{FunctionResponses: []*FunctionResponse{{Name: "f", Response: map[string]any{}}}}); err != nil {
		t.Fatal(err)
	}
	var verr *ValidationError
	if err := s.SendToolResponse(LiveToolResponseInput{FunctionResponses: []*FunctionResponse{{ID: "x", Name: "f", Response: map[string]any{}}}}); !errors.As(err, &verr) {
		t.Errorf("got %v, want *ValidationError", err)
	}
	frames := sock.frames(t)
	if n := len(frames); n != 2 {
		t.Fatalf("sent %d frames, want 2", n)
	}
	want := map[string]any{"toolResponse": map[string]any{"functionResponses": []any{map[string]any{"name": "f", "response": map[string]any{}}}}}
	if diff := cmp.Diff(want, frames[1]); diff != "" {
		t.Errorf("frame mismatch (-want, +got):\n%s", diff)
	}
}

func TestLiveReceive(t *testing.T) {
	s, sock := connect(t, BackendMLDev, nil)
	sock.deliver(`{"setupComplete": {}}`)
	sock.deliver(`not json`)
	sock.deliver(`{"serverContent": {"modelTurn": {"role": "model", "parts": [{"text": "hi"}]}, "turnComplete": true, "outputTranscription": {"text": "hi"}}}`)
	sock.deliver(`{"toolCall": {"functionCalls": [{"id": "c1", "name": "f", "args": {"a": 1}}]}}`)
	sock.deliver(`{"toolCallCancellation": {"ids": ["c1"]}}`)
	sock.deliver(`{"usageMetadata": {"promptTokenCount": 2, "responseTokenCount": 3, "totalTokenCount": 5}}`)
	sock.deliver(`{"goAway": {"timeLeft": "1.5s"}}`)
	sock.deliver(`{"sessionResumptionUpdate": {"newHandle": "h2", "resumable": true, "lastConsumedClientMessageIndex": "4"}}`)
	sock.serverClose(websocket.CloseNormalClosure, "")

	ctx := context.Background()
	var got []*LiveServerMessage
	for {
		m, err := s.Receive(ctx)
		if err == io.EOF {
			break
		}
		var perr *ProtocolError
		if errors.As(err, &perr) {
			if len(got) != 1 {
				t.Errorf("protocol error after %d messages, want 1", len(got))
			}
			continue
		}
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, m)
	}
	want := []*LiveServerMessage{
		{SetupComplete: &LiveServerSetupComplete{}},
		{ServerContent: &LiveServerContent{
			ModelTurn:           &Content{Role: RoleModel, Parts: []Part{Text("hi")}},
			TurnComplete:        true,
			OutputTranscription: &Transcription{Text: "hi"},
		}},
		{ToolCall: &LiveServerToolCall{FunctionCalls: []*FunctionCall{{ID: "c1", Name: "f", Args: map[string]any{"a": 1.0}}}}},
		{ToolCallCancellation: &LiveServerToolCallCancellation{IDs: []string{"c1"}}},
		{UsageMetadata: &UsageMetadata{PromptTokenCount: 2, ResponseTokenCount: 3, TotalTokenCount: 5}},
		{GoAway: &LiveServerGoAway{TimeLeft: 1500 * time.Millisecond}},
		{SessionResumptionUpdate: &LiveServerSessionResumptionUpdate{NewHandle: "h2", Resumable: true, LastConsumedClientMessageIndex: 4}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("messages mismatch (-want, +got):\n%s", diff)
	}
	if _, err := s.Receive(ctx); err != io.EOF {
		t.Errorf("got %v, want io.EOF", err)
	}
}

func TestLiveReceiveVertexUsage(t *testing.T) {
	s, sock := connect(t, BackendVertexAI, nil)
	sock.deliver(`{"usageMetadata": {"candidatesTokenCount": 7, "responseTokenCount": 99, "trafficType": "ON_DEMAND"}}`)
	m, err := s.Receive(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := &UsageMetadata{ResponseTokenCount: 7, TrafficType: "ON_DEMAND"}
	if diff := cmp.Diff(want, m.UsageMetadata); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}
}

func TestLiveReceiveWaits(t *testing.T) {
	s, sock := connect(t, BackendMLDev, nil)
	go func() {
		time.Sleep(10 * time.Millisecond)
		sock.deliver(`{"setupComplete": {}}`)
	}()
	m, err := s.Receive(context.Background())
	if err != nil || m.SetupComplete == nil {
		t.Fatalf("got %+v, %v", m, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Receive(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestLiveClose(t *testing.T) {
	s, sock := connect(t, BackendMLDev, nil)
	sock.deliver(`{"setupComplete": {}}`)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if !sock.isClosed() {
		t.Error("socket not closed")
	}
	// Dropped: it arrived after Close.
	sock.deliver(`{"goAway": {}}`)

	ctx := context.Background()
	if m, err := s.Receive(ctx); err != nil || m.SetupComplete == nil {
		t.Errorf("queued message: got %+v, %v", m, err)
	}
	if _, err := s.Receive(ctx); err != io.EOF {
		t.Errorf("got %v, want io.EOF", err)
	}
	if err := s.SendClientContent(LiveClientContentInput{}); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("got %v, want ErrSessionClosed", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestLiveSendRacingClose(t *testing.T) {
	s, sock := connect(t, BackendMLDev, nil)
	sock.beforeSend = func() { s.Close() }
	if err := s.SendClientContent(LiveClientContentInput{}); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("got %v, want ErrSessionClosed", err)
	}
}

func TestLiveAbnormalClose(t *testing.T) {
	s, sock := connect(t, BackendMLDev, nil)
	sock.serverClose(websocket.CloseInternalServerErr, "boom")
	_, err := s.Receive(context.Background())
	if err == nil || err == io.EOF || !strings.Contains(err.Error(), "1011 boom") {
		t.Errorf("got %v, want a 1011 close error", err)
	}
	if err := s.SendClientContent(LiveClientContentInput{}); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("got %v, want ErrSessionClosed", err)
	}
}

func TestLiveGorilla(t *testing.T) {
	frames := make(chan string, 2)
	replies := []string{
		`{"setupComplete": {}}`,
		`{"serverContent": {"modelTurn": {"parts": [{"text": "hello"}]}, "turnComplete": true}}`,
	}
	var upgrader websocket.Upgrader
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got, want := r.URL.Path, "/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"; got != want {
			t.Errorf("path = %q, want %q", got, want)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %q", got)
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Error(err)
			return
		}
		defer conn.Close()
		for _, reply := range replies {
			_, data, err := conn.ReadMessage()
			if err != nil {
				t.Error(err)
				return
			}
			frames <- string(data)
			if err := conn.WriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
				t.Error(err)
				return
			}
		}
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
		conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	}))
	defer srv.Close()

	client := newLiveClient(t, BackendMLDev, nil, srv.URL+"/")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s, err := client.Live.Connect(ctx, "gemini-live", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var received []*LiveServerMessage
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			m, err := s.Receive(gctx)
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			received = append(received, m)
		}
	})
	g.Go(func() error {
		return s.SendClientContent(LiveClientContentInput{Turns: []*Content{NewUserContent(Text("hi"))}})
	})
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	close(frames)
	var sent []string
	for f := range frames {
		sent = append(sent, f)
	}
	wantSent := []string{
		`{"setup":{"model":"models/gemini-live"}}`,
		`{"clientContent":{"turns":[{"role":"user","parts":[{"text":"hi"}]}],"turnComplete":true}}`,
	}
	if diff := cmp.Diff(wantSent, sent); diff != "" {
		t.Errorf("sent mismatch (-want, +got):\n%s", diff)
	}
	want := []*LiveServerMessage{
		{SetupComplete: &LiveServerSetupComplete{}},
		{ServerContent: &LiveServerContent{ModelTurn: &Content{Parts: []Part{Text("hello")}}, TurnComplete: true}},
	}
	if diff := cmp.Diff(want, received); diff != "" {
		t.Errorf("received mismatch (-want, +got):\n%s", diff)
	}
}
