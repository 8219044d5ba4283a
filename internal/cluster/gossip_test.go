package cluster

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"kvgossip/internal/store"
)

// peerHost and peerPort split an httptest.Server URL into the host and port
// a Peer entry expects, since the cluster table addresses peers by host/port
// pair rather than by URL.
func peerHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "127.0.0.1"
	}
	return u.Hostname()
}

func peerPort(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}
	port, _ := strconv.Atoi(u.Port())
	return port
}

// fakePeer is an HTTP server standing in for a gossip peer, recording every
// /merge request it receives along with the Node header of the sender.
type fakePeer struct {
	srv *httptest.Server

	mu    sync.Mutex
	nodes []string
	ops   [][]store.Operation
}

func newFakePeer() *fakePeer {
	fp := &fakePeer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/merge", func(w http.ResponseWriter, r *http.Request) {
		var ops []store.Operation
		_ = json.NewDecoder(r.Body).Decode(&ops)

		fp.mu.Lock()
		fp.nodes = append(fp.nodes, r.Header.Get("Node"))
		fp.ops = append(fp.ops, ops)
		fp.mu.Unlock()

		w.WriteHeader(http.StatusOK)
	})
	fp.srv = httptest.NewServer(mux)
	return fp
}

func (fp *fakePeer) callCount() int {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return len(fp.nodes)
}

func TestGossipRoundDispatchesLogToPeers(t *testing.T) {
	defer goleak.VerifyNone(t)

	peer := newFakePeer()
	defer peer.srv.Close()

	s := store.New(0)
	s.Apply(store.Operation{Key: "k", Value: "v", Kind: store.KindSet, Origin: 0, Stamp: store.VersionVector{0: 1}})

	table := NewTable([]Peer{
		{ID: 0, Host: "127.0.0.1", Port: 0, Interval: 20 * time.Millisecond},
		{ID: 1, Host: peerHost(peer.srv.URL), Port: peerPort(peer.srv.URL), Interval: 20 * time.Millisecond},
	})

	g := NewGossip(0, table, s)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		g.Run(ctx)
		close(done)
	}()

	deadline := time.After(time.Second)
	for peer.callCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("peer never received a gossip round")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done

	peer.mu.Lock()
	defer peer.mu.Unlock()
	if peer.nodes[0] != "0" {
		t.Fatalf("Node header = %q, want \"0\"", peer.nodes[0])
	}
	if len(peer.ops[0]) != 1 || peer.ops[0][0].Key != "k" {
		t.Fatalf("unexpected gossiped payload: %+v", peer.ops[0])
	}
}

func TestGossipSkipsBlacklistedPeers(t *testing.T) {
	defer goleak.VerifyNone(t)

	peer := newFakePeer()
	defer peer.srv.Close()

	s := store.New(0)
	s.SetBlacklist([]store.NodeID{1})

	table := NewTable([]Peer{
		{ID: 0, Host: "127.0.0.1", Port: 0, Interval: 20 * time.Millisecond},
		{ID: 1, Host: peerHost(peer.srv.URL), Port: peerPort(peer.srv.URL), Interval: 20 * time.Millisecond},
	})

	g := NewGossip(0, table, s)
	ctx, cancel := context.WithCancel(context.Background())
	go g.Run(ctx)

	time.Sleep(60 * time.Millisecond)
	cancel()
	time.Sleep(10 * time.Millisecond)

	if peer.callCount() != 0 {
		t.Fatal("a blacklisted peer must never receive gossip")
	}
}
