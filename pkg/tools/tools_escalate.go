package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	loggerpkg "github.com/minhyannv/support-agent-go/pkg/logger"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"
)

type escalateTool struct {
	ctx Context
}

func (t *escalateTool) name() string {
	return EscalateName
}

func (t *escalateTool) definition() responses.ToolUnionParam {
	return responses.ToolUnionParam{
		OfFunction: &responses.FunctionToolParam{
			Name:        EscalateName,
			Description: openai.String("Escalate the conversation to a human agent when the issue cannot be resolved."),
			Strict:      openai.Bool(true),
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"reason": map[string]any{
						"type":        "string",
						"description": "Why the customer needs a human agent.",
					},
				},
				"required":             []string{"reason"},
				"additionalProperties": false,
			},
		},
	}
}

// Confirmation returns the text the agent receives after a handoff.
func Confirmation(reason string) string {
	return fmt.Sprintf("Successfully escalated to human agent. Reason: %s. A support ticket has been created.", reason)
}

func (t *escalateTool) execute(_ context.Context, argText string) (string, error) {
	var args struct {
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(argText), &args); err != nil {
		t.ctx.debugf("[verbose] escalate_to_human: failed to parse arguments: %v", err)
		return marshalToolResponse(EscalateName, nil, err)
	}
	reason := strings.TrimSpace(args.Reason)
	if reason == "" {
		return marshalToolResponse(EscalateName, nil, errors.New("reason is required"))
	}

	if t.ctx.Notifier != nil {
		t.ctx.Notifier.NotifyHandoff(reason)
	}
	loggerpkg.Info(t.ctx.Logger, "handoff triggered", map[string]any{"reason": reason})
	return Confirmation(reason), nil
}
