package agent

import (
	loggerpkg "github.com/minhyannv/support-agent-go/pkg/logger"
	"github.com/minhyannv/support-agent-go/pkg/tools"
)

// Option configures optional runtime dependencies for a Session.
type Option func(*sessionDeps)

type sessionDeps struct {
	logger    loggerpkg.Logger
	notifier  tools.HandoffNotifier
	responses ResponsesAPI
	stores    VectorStoreAPI
}

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) Option {
	return func(d *sessionDeps) {
		d.logger = l
	}
}

// WithHandoffNotifier sets who is told when the agent escalates.
func WithHandoffNotifier(n tools.HandoffNotifier) Option {
	return func(d *sessionDeps) {
		d.notifier = n
	}
}

// WithResponsesAPI replaces the Responses endpoint, mainly for tests.
func WithResponsesAPI(api ResponsesAPI) Option {
	return func(d *sessionDeps) {
		d.responses = api
	}
}

// WithVectorStoreAPI replaces the vector store endpoint, mainly for tests.
func WithVectorStoreAPI(api VectorStoreAPI) Option {
	return func(d *sessionDeps) {
		d.stores = api
	}
}
