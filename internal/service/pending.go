package service

import "sync"

// callResult is what the peer reported for a forwarded command.
type callResult struct {
	err string
}

// pendingCalls correlates forwarded commands with their acknowledgments.
type pendingCalls struct {
	mu    sync.Mutex
	calls map[string]chan callResult
}

func newPendingCalls() *pendingCalls {
	return &pendingCalls{calls: make(map[string]chan callResult)}
}

// register opens a slot for commandID. The channel receives at most one value.
func (p *pendingCalls) register(commandID string) <-chan callResult {
	ch := make(chan callResult, 1)

	p.mu.Lock()
	p.calls[commandID] = ch
	p.mu.Unlock()

	return ch
}

// resolve delivers the result and closes the slot. It reports false when no
// call waits for commandID, e.g. after a timeout.
func (p *pendingCalls) resolve(commandID string, result callResult) bool {
	p.mu.Lock()
	ch, ok := p.calls[commandID]
	delete(p.calls, commandID)
	p.mu.Unlock()

	if !ok {
		return false
	}
	ch <- result
	return true
}

// cancel drops the slot of commandID.
func (p *pendingCalls) cancel(commandID string) {
	p.mu.Lock()
	delete(p.calls, commandID)
	p.mu.Unlock()
}

// failAll resolves every waiting call with reason.
func (p *pendingCalls) failAll(reason string) {
	p.mu.Lock()
	calls := p.calls
	p.calls = make(map[string]chan callResult)
	p.mu.Unlock()

	for _, ch := range calls {
		ch <- callResult{err: reason}
	}
}

func (p *pendingCalls) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}
