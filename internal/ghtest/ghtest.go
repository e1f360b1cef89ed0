// Package ghtest runs a scripted GitHub GraphQL endpoint for tests.
//
// Cost probes (documents containing rateLimit(dryrun: true)) and ordinary
// queries are answered from two separate queues, so a test only scripts the
// replies it cares about. Every request is recorded for later assertions.
package ghtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// Reply is one scripted response.
type Reply struct {
	Status int
	Body   string
	// Delay holds the response back, e.g. to trip a client timeout.
	Delay time.Duration
}

// Data returns a 200 reply with {"data": data}.
func Data(data string) Reply {
	return Reply{Status: http.StatusOK, Body: `{"data":` + data + `}`}
}

// JSON returns a reply with an arbitrary status and body.
func JSON(status int, body string) Reply {
	return Reply{Status: status, Body: body}
}

// RateLimit returns a 200 probe reply.
func RateLimit(cost, remaining int, resetAt time.Time) Reply {
	return Data(fmt.Sprintf(`{"rateLimit":{"cost":%d,"remaining":%d,"resetAt":%q}}`,
		cost, remaining, resetAt.UTC().Format("2006-01-02T15:04:05Z")))
}

// Slow returns r delayed by d.
func Slow(r Reply, d time.Duration) Reply {
	r.Delay = d
	return r
}

// Request is a recorded request.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Query  string
	Probe  bool
}

// Server is the scripted endpoint.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	probes   []Reply
	replies  []Reply
	requests []Request

	// DefaultProbe answers probes when the probe queue is empty.
	DefaultProbe Reply
}

// NewServer starts a server that is closed when t finishes.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{DefaultProbe: RateLimit(1, 5000, time.Now().Add(time.Hour))}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Host returns host:port of the listener.
func (s *Server) Host() string { return s.Listener.Addr().String() }

// QueueProbes appends replies for cost probes.
func (s *Server) QueueProbes(r ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.probes = append(s.probes, r...)
}

// Queue appends replies for ordinary queries.
func (s *Server) Queue(r ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, r...)
}

// Requests returns a snapshot of every recorded request.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Queries returns the query text of recorded non-probe requests.
func (s *Server) Queries() []string {
	var out []string
	for _, r := range s.Requests() {
		if !r.Probe {
			out = append(out, r.Query)
		}
	}
	return out
}

// Probes returns the query text of recorded probe requests.
func (s *Server) Probes() []string {
	var out []string
	for _, r := range s.Requests() {
		if r.Probe {
			out = append(out, r.Query)
		}
	}
	return out
}

type graphQLRequest struct {
	Query string `json:"query"`
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, Reply{Status: http.StatusMethodNotAllowed, Body: `{"message":"method not allowed"}`})
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, Reply{Status: http.StatusBadRequest, Body: `{"message":"failed to read body"}`})
		return
	}
	var req graphQLRequest
	if err := json.Unmarshal(body, &req); err != nil || req.Query == "" {
		writeJSON(w, Reply{Status: http.StatusBadRequest, Body: `{"message":"Problems parsing JSON"}`})
		return
	}
	probe := strings.Contains(req.Query, "rateLimit(dryrun: true)")

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Query:  req.Query,
		Probe:  probe,
	})
	var reply Reply
	switch {
	case probe && len(s.probes) > 0:
		reply, s.probes = s.probes[0], s.probes[1:]
	case probe:
		reply = s.DefaultProbe
	case len(s.replies) > 0:
		reply, s.replies = s.replies[0], s.replies[1:]
	default:
		reply = JSON(http.StatusInternalServerError, `{"message":"no scripted reply"}`)
	}
	s.mu.Unlock()

	if reply.Delay > 0 {
		t := time.NewTimer(reply.Delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-r.Context().Done():
			return
		}
	}
	writeJSON(w, reply)
}

func writeJSON(w http.ResponseWriter, r Reply) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, r.Body)
}
