// Package breaker wraps chat providers with a circuit breaker so a failing
// backend is skipped until its cooldown expires.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nutridash/dashboard/internal/domain/ai"
	"github.com/nutridash/dashboard/internal/ports/outbound"
	"go.uber.org/zap"
)

// State represents the state of a circuit breaker
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned without calling the provider while the circuit is open
var ErrOpen = errors.New("circuit breaker is open")

// Config holds configuration for a circuit breaker
type Config struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit
	FailureThreshold int

	// Cooldown is how long the circuit stays open before a trial request
	Cooldown time.Duration

	// OnStateChange is called when the state changes
	OnStateChange func(provider ai.ProviderType, from, to State)
}

// Provider is an outbound.ChatProvider guarded by a circuit breaker.
// HealthCheck bypasses the breaker.
type Provider struct {
	next   outbound.ChatProvider
	config Config
	logger *zap.Logger
	now    func() time.Time

	mu          sync.Mutex
	state       State
	failures    int
	nextAttempt time.Time
	probing     bool
}

var _ outbound.ChatProvider = (*Provider)(nil)

// Wrap guards next. A non-positive threshold returns next unchanged.
func Wrap(next outbound.ChatProvider, config Config, logger *zap.Logger) outbound.ChatProvider {
	if config.FailureThreshold <= 0 {
		return next
	}
	if config.Cooldown <= 0 {
		config.Cooldown = 30 * time.Second
	}
	return &Provider{
		next:   next,
		config: config,
		logger: logger.Named("breaker").With(zap.String("provider", string(next.Provider()))),
		now:    time.Now,
	}
}

// Chat forwards to the wrapped provider unless the circuit is open
func (p *Provider) Chat(ctx context.Context, messages []ai.Message) (*outbound.ChatReply, error) {
	if !p.allow() {
		return nil, fmt.Errorf("%s: %w", p.next.Provider(), ErrOpen)
	}

	reply, err := p.next.Chat(ctx, messages)
	// a cancelled caller says nothing about the backend
	if err != nil && ctx.Err() != nil {
		p.release()
		return nil, err
	}
	p.record(err)
	return reply, err
}

// Provider returns the wrapped provider type
func (p *Provider) Provider() ai.ProviderType {
	return p.next.Provider()
}

// HealthCheck forwards to the wrapped provider
func (p *Provider) HealthCheck(ctx context.Context) error {
	return p.next.HealthCheck(ctx)
}

// State returns the current state
func (p *Provider) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// allow reports whether a request may proceed. Half-open admits one probe.
func (p *Provider) allow() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StateClosed:
		return true
	case StateOpen:
		if p.now().Before(p.nextAttempt) {
			return false
		}
		p.setState(StateHalfOpen)
		p.probing = true
		return true
	case StateHalfOpen:
		if p.probing {
			return false
		}
		p.probing = true
		return true
	default:
		return false
	}
}

func (p *Provider) release() {
	p.mu.Lock()
	p.probing = false
	p.mu.Unlock()
}

func (p *Provider) record(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probing = false

	if err == nil {
		p.failures = 0
		if p.state != StateClosed {
			p.setState(StateClosed)
		}
		return
	}

	p.failures++
	switch p.state {
	case StateClosed:
		if p.failures >= p.config.FailureThreshold {
			p.setState(StateOpen)
		}
	case StateHalfOpen:
		p.setState(StateOpen)
	}
}

// setState must be called with mu held
func (p *Provider) setState(to State) {
	from := p.state
	p.state = to

	switch to {
	case StateOpen:
		p.nextAttempt = p.now().Add(p.config.Cooldown)
		p.logger.Warn("Circuit opened",
			zap.Int("failures", p.failures),
			zap.Duration("cooldown", p.config.Cooldown),
		)
	case StateClosed:
		p.failures = 0
		p.logger.Info("Circuit closed")
	}

	if p.config.OnStateChange != nil {
		p.config.OnStateChange(p.next.Provider(), from, to)
	}
}
