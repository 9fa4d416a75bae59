package testsupport

import (
	"context"
	"errors"
	"sync"

	"github.com/goliatone/go-formsession/pkg/crud"
)

// ErrNoReply is returned by RecordingTransport when no reply is scripted.
var ErrNoReply = errors.New("testsupport: no reply scripted")

// Reply is one scripted transport outcome.
type Reply struct {
	Response crud.Response
	Err      error
}

// RecordingTransport records every request and answers from a script. A
// request with no scripted reply succeeds unless Strict is set.
type RecordingTransport struct {
	Strict bool
	// Gate, when non-nil, blocks every call until a value is received.
	Gate chan struct{}

	mu       sync.Mutex
	requests []crud.ActionRequest
	replies  []Reply
}

var _ crud.Transport = (*RecordingTransport)(nil)

// Reply queues a reply.
func (t *RecordingTransport) Reply(resp crud.Response, err error) *RecordingTransport {
	t.mu.Lock()
	t.replies = append(t.replies, Reply{Response: resp, Err: err})
	t.mu.Unlock()
	return t
}

// Succeed queues a successful reply with msg and id.
func (t *RecordingTransport) Succeed(msg string, id any) *RecordingTransport {
	return t.Reply(crud.Response{Success: true, Msg: msg, ID: id}, nil)
}

// Fail queues a remote failure.
func (t *RecordingTransport) Fail(msg string, fields map[string][]string) *RecordingTransport {
	return t.Reply(crud.Response{Msg: msg, Errors: fields}, &crud.RemoteError{Status: 422, Message: msg, Fields: fields})
}

// Do records req and returns the next scripted reply.
func (t *RecordingTransport) Do(ctx context.Context, req crud.ActionRequest) (crud.Response, error) {
	if t.Gate != nil {
		select {
		case <-t.Gate:
		case <-ctx.Done():
			return crud.Response{}, ctx.Err()
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.requests = append(t.requests, req)
	if len(t.replies) == 0 {
		if t.Strict {
			return crud.Response{}, ErrNoReply
		}
		return crud.Response{Success: true}, nil
	}
	next := t.replies[0]
	t.replies = t.replies[1:]
	return next.Response, next.Err
}

// Requests returns the recorded requests.
func (t *RecordingTransport) Requests() []crud.ActionRequest {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]crud.ActionRequest(nil), t.requests...)
}

// Calls returns the number of recorded requests.
func (t *RecordingTransport) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.requests)
}
