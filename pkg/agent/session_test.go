package agent

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	configpkg "github.com/minhyannv/support-agent-go/pkg/config"
	"github.com/minhyannv/support-agent-go/pkg/prompt"
	"github.com/minhyannv/support-agent-go/pkg/tools"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResponses struct {
	calls   []responses.ResponseNewParams
	replies []*responses.Response
	err     error
}

func (f *fakeResponses) New(_ context.Context, body responses.ResponseNewParams, _ ...option.RequestOption) (*responses.Response, error) {
	f.calls = append(f.calls, body)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.replies) == 0 {
		return nil, errors.New("no scripted reply")
	}
	next := f.replies[0]
	f.replies = f.replies[1:]
	return next, nil
}

type fakeStores struct {
	store *openai.VectorStore
	err   error
	ids   []string
}

func (f *fakeStores) Get(_ context.Context, id string, _ ...option.RequestOption) (*openai.VectorStore, error) {
	f.ids = append(f.ids, id)
	return f.store, f.err
}

type recordingNotifier struct {
	reasons []string
}

func (n *recordingNotifier) NotifyHandoff(reason string) {
	n.reasons = append(n.reasons, reason)
}

func mustResponse(t *testing.T, raw string) *responses.Response {
	t.Helper()
	var resp responses.Response
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	return &resp
}

func textResponse(t *testing.T, id, text string) *responses.Response {
	t.Helper()
	return mustResponse(t, `{
		"id": "`+id+`",
		"object": "response",
		"status": "completed",
		"output": [{
			"type": "message",
			"id": "msg_`+id+`",
			"role": "assistant",
			"status": "completed",
			"content": [{"type": "output_text", "text": "`+text+`", "annotations": []}]
		}]
	}`)
}

func testConfig() configpkg.Config {
	cfg := configpkg.DefaultConfig()
	cfg.APIKey = "sk-test"
	cfg.VectorStoreID = "vs_faq"
	return cfg
}

func newTestSession(t *testing.T, cfg configpkg.Config, api ResponsesAPI, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{WithResponsesAPI(api), WithVectorStoreAPI(&fakeStores{})}, opts...)
	s, err := New(context.Background(), cfg, opts...)
	require.NoError(t, err)
	return s
}

func TestNewBuildsDefinition(t *testing.T) {
	s := newTestSession(t, testConfig(), &fakeResponses{})
	def := s.Definition()

	assert.Equal(t, configpkg.DefaultAgentName, def.Name)
	assert.Equal(t, configpkg.DefaultModel, def.Model)
	assert.Equal(t, prompt.SupportInstructions, def.Instructions)
	require.Len(t, def.Tools, 2)
	require.NotNil(t, def.Tools[0].OfFileSearch)
	assert.Equal(t, []string{"vs_faq"}, def.Tools[0].OfFileSearch.VectorStoreIDs)
	require.NotNil(t, def.Tools[1].OfFunction)
	assert.Equal(t, tools.EscalateName, def.Tools[1].OfFunction.Name)
	assert.NotEmpty(t, s.ID())
}

func TestNewRejectsMissingSecrets(t *testing.T) {
	cfg := testConfig()
	cfg.VectorStoreID = " "

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, configpkg.ErrMissingEnv)
}

func TestNewRejectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(ctx, testConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewGivesEachSessionAFreshID(t *testing.T) {
	a := newTestSession(t, testConfig(), &fakeResponses{})
	b := newTestSession(t, testConfig(), &fakeResponses{})
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestSendReturnsOutputText(t *testing.T) {
	api := &fakeResponses{replies: []*responses.Response{textResponse(t, "resp_1", "Hello! How can I help?")}}
	s := newTestSession(t, testConfig(), api)

	reply := s.Send(context.Background(), "  Hi ")
	require.NoError(t, reply.Err)
	assert.Equal(t, "Hello! How can I help?", reply.Text)
	assert.Equal(t, "Hi", reply.Input)

	require.Len(t, api.calls, 1)
	call := api.calls[0]
	assert.Equal(t, "Hi", call.Input.OfString.Value)
	assert.Equal(t, prompt.SupportInstructions, call.Instructions.Value)
	assert.Equal(t, "gpt-4o", string(call.Model))
	assert.Len(t, call.Tools, 2)
	assert.False(t, call.PreviousResponseID.Valid())
}

func TestSendFallsBackToRefusal(t *testing.T) {
	api := &fakeResponses{replies: []*responses.Response{mustResponse(t, `{
		"id": "resp_1",
		"output": [{
			"type": "message",
			"id": "msg_1",
			"role": "assistant",
			"content": [{"type": "refusal", "refusal": "I can't help with that."}]
		}]
	}`)}}
	s := newTestSession(t, testConfig(), api)

	reply := s.Send(context.Background(), "hack my neighbour")
	require.NoError(t, reply.Err)
	assert.Equal(t, "I can't help with that.", reply.Text)
}

func TestSendFallbackWhenNoText(t *testing.T) {
	api := &fakeResponses{replies: []*responses.Response{mustResponse(t, `{"id":"resp_1","output":[]}`)}}
	s := newTestSession(t, testConfig(), api)

	reply := s.Send(context.Background(), "Hi")
	require.NoError(t, reply.Err)
	assert.Equal(t, FallbackReply, reply.Text)
}

func TestSendConvertsErrorsToApology(t *testing.T) {
	api := &fakeResponses{err: errors.New("connection reset")}
	s := newTestSession(t, testConfig(), api)

	reply := s.Send(context.Background(), "Hi")
	require.Error(t, reply.Err)
	assert.Equal(t, "Sorry, I encountered an error: connection reset", reply.Text)
}

func TestSendRejectsEmptyInputWithoutCalling(t *testing.T) {
	api := &fakeResponses{}
	s := newTestSession(t, testConfig(), api)

	reply := s.Send(context.Background(), "   ")
	require.Error(t, reply.Err)
	assert.True(t, strings.HasPrefix(reply.Text, "Sorry, I encountered an error:"))
	assert.Empty(t, api.calls)
}

func TestSendExecutesEscalationAndSubmitsOutput(t *testing.T) {
	notifier := &recordingNotifier{}
	api := &fakeResponses{replies: []*responses.Response{
		mustResponse(t, `{
			"id": "resp_1",
			"output": [{
				"type": "function_call",
				"id": "fc_1",
				"call_id": "call_1",
				"name": "escalate_to_human",
				"arguments": "{\"reason\":\"Refund request\"}",
				"status": "completed"
			}]
		}`),
		textResponse(t, "resp_2", "A human agent will contact you."),
	}}
	s := newTestSession(t, testConfig(), api, WithHandoffNotifier(notifier))

	reply := s.Send(context.Background(), "I want a refund")
	require.NoError(t, reply.Err)
	assert.Equal(t, "A human agent will contact you.", reply.Text)
	assert.Equal(t, []string{"Refund request"}, notifier.reasons)

	require.Len(t, api.calls, 2)
	followUp := api.calls[1]
	assert.Equal(t, "resp_1", followUp.PreviousResponseID.Value)
	assert.Equal(t, prompt.SupportInstructions, followUp.Instructions.Value)
	require.Len(t, followUp.Input.OfInputItemList, 1)

	payload, err := json.Marshal(followUp.Input.OfInputItemList[0])
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"call_1"`)
	assert.Contains(t, string(payload), "Successfully escalated to human agent. Reason: Refund request.")
}

func TestSendStopsAfterMaxTurns(t *testing.T) {
	loop := `{
		"id": "resp_loop",
		"output": [{
			"type": "function_call",
			"call_id": "call_x",
			"name": "escalate_to_human",
			"arguments": "{\"reason\":\"again\"}"
		}]
	}`
	cfg := testConfig()
	cfg.MaxTurns = 2
	api := &fakeResponses{replies: []*responses.Response{mustResponse(t, loop), mustResponse(t, loop)}}
	s := newTestSession(t, cfg, api)

	reply := s.Send(context.Background(), "help")
	require.Error(t, reply.Err)
	assert.Contains(t, reply.Text, "max turns reached")
	assert.Len(t, api.calls, 2)
}

func TestSendIsStatelessByDefault(t *testing.T) {
	api := &fakeResponses{replies: []*responses.Response{
		textResponse(t, "resp_1", "first"),
		textResponse(t, "resp_2", "second"),
	}}
	s := newTestSession(t, testConfig(), api)

	s.Send(context.Background(), "one")
	s.Send(context.Background(), "two")

	require.Len(t, api.calls, 2)
	assert.False(t, api.calls[1].PreviousResponseID.Valid())
}

func TestSendThreadsTurnsWhenRemembering(t *testing.T) {
	cfg := testConfig()
	cfg.Remember = true
	api := &fakeResponses{replies: []*responses.Response{
		textResponse(t, "resp_1", "first"),
		textResponse(t, "resp_2", "second"),
	}}
	s := newTestSession(t, cfg, api)

	s.Send(context.Background(), "one")
	s.Send(context.Background(), "two")

	require.Len(t, api.calls, 2)
	assert.Equal(t, "resp_1", api.calls[1].PreviousResponseID.Value)
}

func TestVerifyKnowledgeStore(t *testing.T) {
	stores := &fakeStores{store: &openai.VectorStore{ID: "vs_faq", Name: "FAQ"}}
	s, err := New(context.Background(), testConfig(), WithResponsesAPI(&fakeResponses{}), WithVectorStoreAPI(stores))
	require.NoError(t, err)

	require.NoError(t, s.VerifyKnowledgeStore(context.Background()))
	assert.Equal(t, []string{"vs_faq"}, stores.ids)

	stores.err = errors.New("404 not found")
	err = s.VerifyKnowledgeStore(context.Background())
	assert.ErrorContains(t, err, "verify vector store vs_faq")
}

func TestSendAgainstHTTPServer(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/responses", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "resp_http",
			"object": "response",
			"status": "completed",
			"output": [{
				"type": "message",
				"id": "msg_http",
				"role": "assistant",
				"status": "completed",
				"content": [{"type": "output_text", "text": "According to our FAQ, we ship worldwide.", "annotations": []}]
			}]
		}`)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.BaseURL = srv.URL
	s, err := New(context.Background(), cfg)
	require.NoError(t, err)

	reply := s.Send(context.Background(), "Do you ship abroad?")
	require.NoError(t, reply.Err)
	assert.Equal(t, "According to our FAQ, we ship worldwide.", reply.Text)

	assert.Equal(t, "Do you ship abroad?", body["input"])
	assert.Equal(t, "gpt-4o", body["model"])
	toolList, ok := body["tools"].([]any)
	require.True(t, ok)
	require.Len(t, toolList, 2)
	first, _ := toolList[0].(map[string]any)
	assert.Equal(t, "file_search", first["type"])
}
