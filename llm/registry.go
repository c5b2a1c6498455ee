package llm

import (
	"context"
	"log/slog"
	"time"
)

// DefaultCallTimeout bounds a single provider call. On timeout the registry
// advances to the next fallback candidate, same as any call failure.
const DefaultCallTimeout = 120 * time.Second

// Registry holds the instantiated providers and tries them in the declared
// fallback order. It is read-only after construction; instantiated clients
// are safely reused across think-loop invocations.
type Registry struct {
	providers   map[string]Provider
	disabled    map[string]bool
	order       []string
	callTimeout time.Duration
	log         *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*registrySetup)

type registrySetup struct {
	factories   map[string]Factory
	callTimeout time.Duration
}

// WithCallTimeout sets the per-provider call timeout.
func WithCallTimeout(d time.Duration) RegistryOption {
	return func(s *registrySetup) {
		if d > 0 {
			s.callTimeout = d
		}
	}
}

// WithFactory overrides or adds a provider factory. Tests use this to
// install fakes; hosts can use it to plug in bespoke backends.
func WithFactory(name string, f Factory) RegistryOption {
	return func(s *registrySetup) {
		s.factories[name] = f
	}
}

// NewRegistry instantiates the providers named in the credentials document.
// Unknown provider names and construction failures are logged and skipped,
// never fatal: a half-valid credentials file still yields a working
// registry for the providers that did construct.
func NewRegistry(creds Credentials, opts ...RegistryOption) *Registry {
	setup := &registrySetup{
		factories:   make(map[string]Factory, len(builtinFactories)),
		callTimeout: DefaultCallTimeout,
	}
	for name, f := range builtinFactories {
		setup.factories[name] = f
	}
	for _, opt := range opts {
		opt(setup)
	}

	log := slog.With("component", "llm")

	order := creds.FallbackOrder
	if len(order) == 0 {
		order = DefaultFallbackOrder
	}

	r := &Registry{
		providers:   make(map[string]Provider),
		disabled:    make(map[string]bool),
		order:       append([]string(nil), order...),
		callTimeout: setup.callTimeout,
		log:         log,
	}

	for _, cfg := range creds.Providers {
		if !cfg.IsEnabled() {
			r.disabled[cfg.Name] = true
			continue
		}
		factory, ok := setup.factories[cfg.Name]
		if !ok {
			log.Warn("unknown provider in credentials, skipping", "provider", cfg.Name)
			continue
		}
		p, err := factory(cfg)
		if err != nil {
			log.Warn("provider construction failed, skipping", "provider", cfg.Name, "error", err)
			continue
		}
		r.providers[cfg.Name] = p
	}

	return r
}

// Call tries each provider in fallback order and returns the first
// successful response together with the name of the provider that produced
// it. A provider is attempted at most once per Call; failures advance the
// order. When every candidate is exhausted, the error is a *NoProviderError
// naming each attempt.
func (r *Registry) Call(ctx context.Context, req CallRequest) (text string, provider string, err error) {
	var attempts []Attempt

	for _, name := range r.order {
		if r.disabled[name] {
			attempts = append(attempts, Attempt{Provider: name, Reason: "disabled"})
			continue
		}
		p, ok := r.providers[name]
		if !ok {
			attempts = append(attempts, Attempt{Provider: name, Reason: "not configured"})
			continue
		}
		if !p.Available() {
			attempts = append(attempts, Attempt{Provider: name, Reason: "unavailable (missing credentials or endpoint)"})
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
		text, callErr := p.Call(callCtx, req)
		cancel()

		if callErr != nil {
			r.log.Warn("provider call failed, trying next", "provider", name, "error", callErr)
			attempts = append(attempts, Attempt{Provider: name, Err: callErr})
			continue
		}
		return text, name, nil
	}

	return "", "", &NoProviderError{Attempts: attempts}
}

// Available returns the names of providers that are configured, enabled,
// and report availability, in fallback order.
func (r *Registry) Available() []string {
	var names []string
	for _, name := range r.order {
		if p, ok := r.providers[name]; ok && !r.disabled[name] && p.Available() {
			names = append(names, name)
		}
	}
	return names
}

// Order returns a copy of the fallback order.
func (r *Registry) Order() []string {
	return append([]string(nil), r.order...)
}
