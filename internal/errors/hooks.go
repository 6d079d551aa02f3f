package errors

import (
	"sync"
	"sync/atomic"
)

// ErrorHook is called for every error built while at least one hook is registered.
type ErrorHook func(ee *EnhancedError)

var (
	hooksMu        sync.RWMutex
	errorHooks     []ErrorHook
	hasActiveHooks atomic.Bool
)

// AddErrorHook registers a hook. Hooks run synchronously inside Build and
// must not block.
func AddErrorHook(hook ErrorHook) {
	if hook == nil {
		return
	}
	hooksMu.Lock()
	defer hooksMu.Unlock()
	errorHooks = append(errorHooks, hook)
	hasActiveHooks.Store(true)
}

// ClearErrorHooks removes all registered hooks.
func ClearErrorHooks() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	errorHooks = nil
	hasActiveHooks.Store(false)
}

func runHooks(ee *EnhancedError) {
	hooksMu.RLock()
	hooks := errorHooks
	hooksMu.RUnlock()

	for _, hook := range hooks {
		hook(ee)
	}
}
