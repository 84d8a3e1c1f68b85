package flows

import (
	"context"
	"errors"
	"sync"

	"github.com/hostedpay/payflow/internal/domain"
	"github.com/hostedpay/payflow/internal/gateway"
	"github.com/hostedpay/payflow/internal/persistence/inmemory"
)

// faultyLog wraps the in-memory interaction log and rejects appends of the
// kinds set through failKinds, simulating log storage failures.
type faultyLog struct {
	*inmemory.InteractionRepository
	mu   sync.Mutex
	fail map[domain.EntryKind]bool
}

func newFaultyLog() *faultyLog {
	return &faultyLog{InteractionRepository: inmemory.NewInteractionRepository()}
}

func (l *faultyLog) failKinds(kinds ...domain.EntryKind) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fail = make(map[domain.EntryKind]bool)
	for _, k := range kinds {
		l.fail[k] = true
	}
}

func (l *faultyLog) Append(ctx context.Context, entry *domain.InteractionEntry) error {
	l.mu.Lock()
	rejected := l.fail[entry.Kind]
	l.mu.Unlock()
	if rejected {
		return errors.New("log storage unavailable")
	}
	return l.InteractionRepository.Append(ctx, entry)
}

// mockPort is a scriptable gateway port. Each operation delegates to its Fn
// field when set and returns a plain success otherwise.
type mockPort struct {
	mu    sync.Mutex
	calls map[string]int

	AuthorizeFn         func(ctx context.Context, data gateway.RequestData) (*gateway.Result, error)
	CompleteAuthorizeFn func(ctx context.Context, data gateway.RequestData) (*gateway.Result, error)
	CaptureFn           func(ctx context.Context, data gateway.RequestData) (*gateway.Result, error)
	CompleteCaptureFn   func(ctx context.Context, data gateway.RequestData) (*gateway.Result, error)
	CancelFn            func(ctx context.Context, data gateway.RequestData) (*gateway.Result, error)
	CompleteCancelFn    func(ctx context.Context, data gateway.RequestData) (*gateway.Result, error)
	RefundFn            func(ctx context.Context, data gateway.RequestData) (*gateway.Result, error)
	CompleteRefundFn    func(ctx context.Context, data gateway.RequestData) (*gateway.Result, error)
}

func (m *mockPort) inc(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[method]++
}

func (m *mockPort) callCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *mockPort) Authorize(ctx context.Context, data gateway.RequestData) (*gateway.Result, error) {
	m.inc("Authorize")
	if m.AuthorizeFn != nil {
		return m.AuthorizeFn(ctx, data)
	}
	return &gateway.Result{Successful: true}, nil
}

func (m *mockPort) CompleteAuthorize(ctx context.Context, data gateway.RequestData) (*gateway.Result, error) {
	m.inc("CompleteAuthorize")
	if m.CompleteAuthorizeFn != nil {
		return m.CompleteAuthorizeFn(ctx, data)
	}
	return &gateway.Result{Successful: true}, nil
}

func (m *mockPort) Capture(ctx context.Context, data gateway.RequestData) (*gateway.Result, error) {
	m.inc("Capture")
	if m.CaptureFn != nil {
		return m.CaptureFn(ctx, data)
	}
	return &gateway.Result{Successful: true}, nil
}

func (m *mockPort) CompleteCapture(ctx context.Context, data gateway.RequestData) (*gateway.Result, error) {
	m.inc("CompleteCapture")
	if m.CompleteCaptureFn != nil {
		return m.CompleteCaptureFn(ctx, data)
	}
	return &gateway.Result{Successful: true}, nil
}

func (m *mockPort) Cancel(ctx context.Context, data gateway.RequestData) (*gateway.Result, error) {
	m.inc("Cancel")
	if m.CancelFn != nil {
		return m.CancelFn(ctx, data)
	}
	return &gateway.Result{Successful: true}, nil
}

func (m *mockPort) CompleteCancel(ctx context.Context, data gateway.RequestData) (*gateway.Result, error) {
	m.inc("CompleteCancel")
	if m.CompleteCancelFn != nil {
		return m.CompleteCancelFn(ctx, data)
	}
	return &gateway.Result{Successful: true}, nil
}

func (m *mockPort) Refund(ctx context.Context, data gateway.RequestData) (*gateway.Result, error) {
	m.inc("Refund")
	if m.RefundFn != nil {
		return m.RefundFn(ctx, data)
	}
	return &gateway.Result{Successful: true}, nil
}

func (m *mockPort) CompleteRefund(ctx context.Context, data gateway.RequestData) (*gateway.Result, error) {
	m.inc("CompleteRefund")
	if m.CompleteRefundFn != nil {
		return m.CompleteRefundFn(ctx, data)
	}
	return &gateway.Result{Successful: true}, nil
}
