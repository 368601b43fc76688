package core

import (
	"sync"

	"github.com/nimbuscore/eventhub/internal/core/logging"
)

// preprocessorChain applies registered preprocessors to every event in
// registration order, before the event reaches response correlation or any
// listener. A panicking preprocessor is treated as a no-op transform: the
// chain logs it and continues with the event as it was before that step.
type preprocessorChain struct {
	mu     sync.RWMutex
	chain  []Preprocessor
	logger logging.ServiceLogger
}

func newPreprocessorChain(logger logging.ServiceLogger) *preprocessorChain {
	return &preprocessorChain{logger: logger}
}

func (p *preprocessorChain) register(pp Preprocessor) {
	p.mu.Lock()
	p.chain = append(p.chain, pp)
	p.mu.Unlock()
}

func (p *preprocessorChain) apply(event Event) Event {
	p.mu.RLock()
	snapshot := make([]Preprocessor, len(p.chain))
	copy(snapshot, p.chain)
	p.mu.RUnlock()

	result := event
	for _, pp := range snapshot {
		result = p.applyOne(pp, result)
	}
	return result
}

func (p *preprocessorChain) applyOne(pp Preprocessor, event Event) (out Event) {
	out = event
	defer func() {
		if r := recover(); r != nil {
			out = event
			if p.logger != nil {
				p.logger.Error("preprocessor panicked, event passed through unchanged", nil, logging.LogFields{
					"panic": r,
				})
			}
		}
	}()
	return pp(event)
}
