package agent

import (
	"context"
	"sync"

	"vesagent/event"
)

var (
	defaultMu    sync.Mutex
	defaultAgent *Agent
)

// Init initializes the process-wide agent used by PostEvent and Shutdown.
// Params: opts agent options.
// Returns: ErrAlreadyInitialized on a second call, or Initialize errors.
func Init(opts Options) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultAgent != nil {
		return ErrAlreadyInitialized
	}
	a, err := Initialize(opts)
	if err != nil {
		return err
	}
	defaultAgent = a
	return nil
}

// Default returns the process-wide agent or nil before Init.
func Default() *Agent {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultAgent
}

// PostEvent posts ev through the process-wide agent.
// Params: ev fully built event.
// Returns: ErrNotInitialized before Init, otherwise Agent.Post result.
func PostEvent(ev event.Event) error {
	return Default().Post(ev)
}

// Shutdown shuts the process-wide agent down.
// Params: ctx bounds the drain.
// Returns: ErrNotInitialized before Init.
func Shutdown(ctx context.Context) error {
	return Default().Shutdown(ctx)
}
