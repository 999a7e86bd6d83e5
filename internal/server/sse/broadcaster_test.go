package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readEvent(t *testing.T, r *bufio.Reader) (name, data string) {
	t.Helper()
	name, _, data = readEventWithID(t, r)
	return name, data
}

func readEventWithID(t *testing.T, r *bufio.Reader) (name, id, data string) {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("reading stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			return name, id, data
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "id: "):
			id = strings.TrimPrefix(line, "id: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestBroadcasterSessionScope(t *testing.T) {
	logger := zerolog.Nop()
	b := NewBroadcaster(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.ServeSession(w, r, r.URL.Query().Get("session"))
	}))

	resp, err := http.Get(srv.URL + "?session=s1")
	if err != nil {
		t.Fatal(err)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("unexpected content type %q", ct)
	}
	r := bufio.NewReader(resp.Body)
	if name, _ := readEvent(t, r); name != "connected" {
		t.Fatalf("expected connected event, got %q", name)
	}
	waitFor(t, func() bool { return b.ClientCount() == 1 })

	b.Broadcast(Event{Event: "cart.reconciled", Session: "other", Data: "hidden"})
	b.Broadcast(Event{Event: "cart.reconciled", Session: "s1", Data: "mine"})
	b.Broadcast(Event{Event: "product.added", Data: map[string]string{"id": "pho-bo"}})

	name, data := readEvent(t, r)
	if name != "cart.reconciled" || data != `"mine"` {
		t.Errorf("got %s %s, want own cart event", name, data)
	}
	name, data = readEvent(t, r)
	if name != "product.added" || data != `{"id":"pho-bo"}` {
		t.Errorf("got %s %s, want broadcast event", name, data)
	}

	_ = resp.Body.Close()
	waitFor(t, func() bool { return b.ClientCount() == 0 })
	srv.Close()
	cancel()
	<-done
}

func TestBroadcasterShutdownEndsStreams(t *testing.T) {
	logger := zerolog.Nop()
	b := NewBroadcaster(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stream", nil)
	served := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(served)
	}()
	waitFor(t, func() bool { return b.ClientCount() == 1 })

	cancel()
	<-done
	select {
	case <-served:
	case <-time.After(time.Second):
		t.Fatal("stream did not end on shutdown")
	}
}

func TestBroadcasterReplaysMissedEvents(t *testing.T) {
	logger := zerolog.Nop()
	b := NewBroadcaster(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()
	defer func() { cancel(); <-done }()

	b.Broadcast(Event{Event: "product.added", Data: "pho-bo"})
	b.Broadcast(Event{Event: "cart.reconciled", Session: "other", Data: "hidden"})
	b.Broadcast(Event{Event: "product.updated", Data: "bun-cha"})
	waitFor(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return len(b.history) == 3
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.ServeSession(w, r, "s1")
	}))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.Header.Set("Last-Event-ID", "1")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	r := bufio.NewReader(resp.Body)
	if name, _ := readEvent(t, r); name != "connected" {
		t.Fatalf("expected connected event, got %q", name)
	}
	name, id, data := readEventWithID(t, r)
	if name != "product.updated" || id != "3" || data != `"bun-cha"` {
		t.Errorf("replayed %s id=%s %s, want product.updated id=3", name, id, data)
	}
}

func TestBroadcasterRefusesAfterShutdown(t *testing.T) {
	logger := zerolog.Nop()
	b := NewBroadcaster(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b.Run(ctx)

	w := httptest.NewRecorder()
	b.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stream", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}
