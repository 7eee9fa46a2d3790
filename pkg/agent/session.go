// Package agent builds the hosted support agent and runs one turn at a time
// against the OpenAI Responses API.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	configpkg "github.com/minhyannv/support-agent-go/pkg/config"
	loggerpkg "github.com/minhyannv/support-agent-go/pkg/logger"
	"github.com/minhyannv/support-agent-go/pkg/prompt"
	"github.com/minhyannv/support-agent-go/pkg/tools"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

// FallbackReply is shown when the response carries no text.
const FallbackReply = "I'm sorry, I couldn't process your request."

// ResponsesAPI is the subset of the Responses service a Session calls.
type ResponsesAPI interface {
	New(ctx context.Context, body responses.ResponseNewParams, opts ...option.RequestOption) (*responses.Response, error)
}

// VectorStoreAPI is the subset of the vector store service used at startup.
type VectorStoreAPI interface {
	Get(ctx context.Context, vectorStoreID string, opts ...option.RequestOption) (*openai.VectorStore, error)
}

// Definition is the identity of the remote agent. It is built once per
// Session and never mutated.
type Definition struct {
	Name         string
	Model        string
	Instructions string
	Tools        []responses.ToolUnionParam
}

// Reply is the outcome of one turn. Err is set when Text is an apology
// produced from a failure.
type Reply struct {
	Input string
	Text  string
	Err   error
}

// Session is one live conversation with the support agent.
type Session struct {
	id        string
	def       Definition
	config    configpkg.Config
	responses ResponsesAPI
	stores    VectorStoreAPI
	tools     *tools.Registry

	// lastResponseID threads turns together when config.Remember is set.
	lastResponseID string

	logger  loggerpkg.Logger
	verbose bool
}

// New initializes a Session with the provided context, config, and dependencies.
func New(ctx context.Context, cfg configpkg.Config, opts ...Option) (*Session, error) {
	cfg = configpkg.Normalize(cfg)
	deps := sessionDeps{logger: loggerpkg.NopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&deps)
		}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("initialize agent: %w", err)
	}
	if err := configpkg.Validate(cfg); err != nil {
		return nil, err
	}

	instructions := prompt.Build(cfg.Instructions)
	registry := tools.New(tools.Context{
		VectorStoreIDs: []string{cfg.VectorStoreID},
		Verbose:        cfg.Verbose,
		Logger:         deps.logger,
		Notifier:       deps.notifier,
	})

	if deps.responses == nil || deps.stores == nil {
		client := newOpenAIClient(cfg)
		if deps.responses == nil {
			deps.responses = &client.Responses
		}
		if deps.stores == nil {
			deps.stores = &client.VectorStores
		}
	}

	s := &Session{
		id: uuid.NewString(),
		def: Definition{
			Name:         cfg.AgentName,
			Model:        cfg.Model,
			Instructions: instructions,
			Tools:        registry.Definitions(),
		},
		config:    cfg,
		responses: deps.responses,
		stores:    deps.stores,
		tools:     registry,
		logger:    deps.logger,
		verbose:   cfg.Verbose,
	}
	loggerpkg.Info(s.logger, "agent initialized", map[string]any{
		"session":      s.id,
		"agent":        s.def.Name,
		"model":        s.def.Model,
		"vector_store": cfg.VectorStoreID,
		"tools":        len(s.def.Tools),
		"remember":     cfg.Remember,
	})
	return s, nil
}

func newOpenAIClient(cfg configpkg.Config) openai.Client {
	opts := []option.RequestOption{}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	return openai.NewClient(opts...)
}

// ID returns the session identifier used in log records.
func (s *Session) ID() string {
	return s.id
}

// Definition returns the agent definition this session sends.
func (s *Session) Definition() Definition {
	return s.def
}

// VerifyKnowledgeStore checks that the configured vector store exists.
func (s *Session) VerifyKnowledgeStore(ctx context.Context) error {
	store, err := s.stores.Get(ctx, s.config.VectorStoreID)
	if err != nil {
		return fmt.Errorf("verify vector store %s: %w", s.config.VectorStoreID, err)
	}
	loggerpkg.Info(s.logger, "knowledge store verified", map[string]any{
		"session":      s.id,
		"vector_store": store.ID,
		"name":         store.Name,
		"files":        store.FileCounts.Completed,
	})
	return nil
}

// Send runs one turn and returns the reply text. Failures are reported
// through Reply.Err with an apology as the text; Send never fails outright.
func (s *Session) Send(ctx context.Context, input string) Reply {
	input = strings.TrimSpace(input)
	if ctx == nil {
		ctx = context.Background()
	}
	if input == "" {
		return s.failed(input, errors.New("user input is required"))
	}

	resp, err := s.runIteration(ctx, input)
	if err != nil {
		return s.failed(input, err)
	}

	text := outputText(resp)
	if text == "" {
		loggerpkg.Warn(s.logger, "response carried no text", map[string]any{
			"session":  s.id,
			"response": resp.ID,
		})
		text = FallbackReply
	}
	if s.config.Remember {
		s.lastResponseID = resp.ID
	}
	return Reply{Input: input, Text: text}
}

func (s *Session) failed(input string, err error) Reply {
	loggerpkg.Error(s.logger, "error processing message", map[string]any{
		"session": s.id,
		"error":   err.Error(),
	})
	return Reply{
		Input: input,
		Text:  fmt.Sprintf("Sorry, I encountered an error: %v", err),
		Err:   err,
	}
}

// runIteration sends the turn and resolves locally handled tool calls until
// the model produces a final response.
func (s *Session) runIteration(ctx context.Context, input string) (*responses.Response, error) {
	params := s.newParams()
	params.Input = responses.ResponseNewParamsInputUnion{OfString: openai.String(input)}
	if s.lastResponseID != "" {
		params.PreviousResponseID = openai.String(s.lastResponseID)
	}

	maxTurns := s.config.MaxTurns
	for turn := 0; turn < maxTurns; turn++ {
		s.debugf("[verbose] iteration: %d/%d", turn+1, maxTurns)
		resp, err := s.responses.New(ctx, params)
		if err != nil {
			return nil, err
		}
		if resp == nil {
			return nil, errors.New("empty response")
		}

		calls := functionCalls(resp)
		if len(calls) == 0 {
			return resp, nil
		}
		s.debugf("[verbose] iteration: agent requested %d tool call(s)", len(calls))

		params = s.newParams()
		params.PreviousResponseID = openai.String(resp.ID)
		params.Input = responses.ResponseNewParamsInputUnion{OfInputItemList: s.toolOutputs(ctx, calls)}
	}

	return nil, errors.New("max turns reached before assistant produced a final response")
}

func (s *Session) newParams() responses.ResponseNewParams {
	return responses.ResponseNewParams{
		Model:        shared.ResponsesModel(s.def.Model),
		Instructions: openai.String(s.def.Instructions),
		Tools:        s.def.Tools,
	}
}

func (s *Session) toolOutputs(ctx context.Context, calls []responses.ResponseFunctionToolCall) responses.ResponseInputParam {
	items := make(responses.ResponseInputParam, 0, len(calls))
	for _, call := range calls {
		s.debugf("[verbose] tool call: %s(id=%s) args=%s", call.Name, call.CallID, call.Arguments)
		output, err := s.tools.Execute(ctx, call.Name, call.Arguments)
		if err != nil {
			output = fmt.Sprintf(`{"ok":false,"error":%q}`, err.Error())
		}
		items = append(items, responses.ResponseInputItemParamOfFunctionCallOutput(call.CallID, output))
	}
	return items
}

func functionCalls(resp *responses.Response) []responses.ResponseFunctionToolCall {
	var calls []responses.ResponseFunctionToolCall
	for _, item := range resp.Output {
		if item.Type == "function_call" {
			calls = append(calls, item.AsFunctionCall())
		}
	}
	return calls
}

// outputText prefers the aggregated output text and falls back to a refusal.
func outputText(resp *responses.Response) string {
	if text := resp.OutputText(); strings.TrimSpace(text) != "" {
		return text
	}
	for _, item := range resp.Output {
		if item.Type != "message" {
			continue
		}
		for _, content := range item.AsMessage().Content {
			if content.Type == "refusal" && strings.TrimSpace(content.Refusal) != "" {
				return content.Refusal
			}
		}
	}
	return ""
}

func (s *Session) debugf(format string, args ...any) {
	loggerpkg.Debugf(s.verbose, s.logger, format, args...)
}
