package tools

import (
	"context"
	"encoding/json"
	"fmt"

	loggerpkg "github.com/minhyannv/support-agent-go/pkg/logger"
	"github.com/openai/openai-go/responses"
)

// Names of the tools exposed to the support agent.
const (
	FileSearchName = "file_search"
	EscalateName   = "escalate_to_human"
)

type tool interface {
	definition() responses.ToolUnionParam
	execute(ctx context.Context, argText string) (string, error)
	name() string
}

// HandoffNotifier is told when the agent hands the conversation to a human.
type HandoffNotifier interface {
	NotifyHandoff(reason string)
}

type Context struct {
	VectorStoreIDs []string
	Verbose        bool
	Logger         loggerpkg.Logger
	Notifier       HandoffNotifier
}

func (c Context) debugf(format string, args ...any) {
	loggerpkg.Debugf(c.Verbose, c.Logger, format, args...)
}

// Registry holds the ordered tool list and executes locally handled calls.
// Hosted tools only contribute a definition; the remote service runs them.
type Registry struct {
	registry map[string]tool
	ctx      Context
	params   []responses.ToolUnionParam
}

type toolResponse struct {
	OK   bool        `json:"ok"`
	Tool string      `json:"tool,omitempty"`
	Data interface{} `json:"data,omitempty"`
	Err  string      `json:"error,omitempty"`
}

// New builds a registry with the retrieval tool followed by the escalation tool.
func New(ctx Context) *Registry {
	if ctx.Logger == nil {
		ctx.Logger = loggerpkg.NopLogger{}
	}
	t := &Registry{
		registry: make(map[string]tool),
		ctx:      ctx,
	}

	if len(ctx.VectorStoreIDs) > 0 {
		t.registerHosted(FileSearchName, responses.ToolParamOfFileSearch(ctx.VectorStoreIDs))
	}
	t.register(&escalateTool{ctx: ctx})
	return t
}

func (t *Registry) registerHosted(name string, def responses.ToolUnionParam) {
	t.params = append(t.params, def)
	t.ctx.debugf("[verbose] registered hosted tool: %s", name)
}

func (t *Registry) register(toolImpl tool) {
	t.registry[toolImpl.name()] = toolImpl
	t.params = append(t.params, toolImpl.definition())
	t.ctx.debugf("[verbose] registered tool: %s", toolImpl.name())
}

func (t *Registry) Definitions() []responses.ToolUnionParam {
	return t.params
}

// Execute runs a function call requested by the model and returns the text
// handed back to it.
func (t *Registry) Execute(ctx context.Context, name, arguments string) (string, error) {
	if ctx != nil {
		select {
		case <-ctx.Done():
			return marshalToolResponse(name, nil, ctx.Err())
		default:
		}
	}

	toolImpl, ok := t.registry[name]
	if !ok {
		return marshalToolResponse(name, nil, fmt.Errorf("unknown tool: %s", name))
	}

	return toolImpl.execute(ctx, arguments)
}

func marshalToolResponse(toolName string, data interface{}, err error) (string, error) {
	resp := toolResponse{
		OK:   err == nil,
		Tool: toolName,
		Data: data,
	}
	if err != nil {
		resp.Err = err.Error()
	}
	payload, marshalErr := json.Marshal(resp)
	if marshalErr != nil {
		return "", marshalErr
	}
	return string(payload), nil
}
