package invoke

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrFunctionNotFound = errors.New("function not found")

// HandlerFunc serves one function hosted by a Mux.
type HandlerFunc func(ctx context.Context, payload []byte) ([]byte, error)

// Mux is an in-process Invoker: functions are Go handlers registered under
// their identifier. It stands in for Lambda in tests and local runs.
type Mux struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

func NewMux() *Mux {
	return &Mux{handlers: make(map[string]HandlerFunc)}
}

// Register adds a handler. Registering the same identifier twice fails.
func (m *Mux) Register(function string, h HandlerFunc) error {
	if function == "" || h == nil {
		return fmt.Errorf("invoke: empty function name or nil handler")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.handlers[function]; ok {
		return fmt.Errorf("invoke: function %q already registered", function)
	}
	m.handlers[function] = h
	return nil
}

func (m *Mux) Deregister(function string) {
	m.mu.Lock()
	delete(m.handlers, function)
	m.mu.Unlock()
}

func (m *Mux) Invoke(ctx context.Context, function string, payload []byte) ([]byte, error) {
	m.mu.RLock()
	h, ok := m.handlers[function]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFunctionNotFound, function)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h(ctx, payload)
}
