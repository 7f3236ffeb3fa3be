package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"agenthub/internal/apperr"
	"agenthub/internal/tools"
)

// maxToolIterations bounds the tool-calling loop so a misbehaving model
// cannot spin forever.
const maxToolIterations = 10

type toolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type completionMessage struct {
	Content   string     `json:"content"`
	ToolCalls []toolCall `json:"tool_calls,omitempty"`
}

// runCompletionLoop calls the completion endpoint, executing tool calls until
// the model produces a plain assistant message.
func (e *conversationEngine) runCompletionLoop(ctx context.Context, messages []map[string]interface{}, toolDefs []map[string]interface{}, inv *tools.Invocation) (string, error) {
	working := messages

	for iteration := 0; iteration < maxToolIterations; iteration++ {
		response, err := e.complete(ctx, working, toolDefs)
		if err != nil {
			return "", err
		}

		if len(response.ToolCalls) == 0 {
			return response.Content, nil
		}

		log.Printf("🔧 [ENGINE] Iteration %d/%d: %d tool call(s)", iteration+1, maxToolIterations, len(response.ToolCalls))

		working = append(working, map[string]interface{}{
			"role":       "assistant",
			"content":    response.Content,
			"tool_calls": response.ToolCalls,
		})

		for _, call := range response.ToolCalls {
			args := map[string]interface{}{}
			if call.Function.Arguments != "" {
				if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
					log.Printf("⚠️  [ENGINE] Bad arguments for tool %s: %v", call.Function.Name, err)
				}
			}

			result, err := e.registry.Execute(ctx, call.Function.Name, args, inv)
			if err != nil {
				// Feed the failure back to the model instead of aborting the
				// turn; the model can recover or report it
				result = fmt.Sprintf("Error: %v", err)
			}

			working = append(working, map[string]interface{}{
				"role":         "tool",
				"tool_call_id": call.ID,
				"content":      result,
			})
		}
	}

	return "", apperr.Upstream("completion", fmt.Errorf("tool loop exceeded %d iterations", maxToolIterations))
}

// complete performs one chat completion request.
func (e *conversationEngine) complete(ctx context.Context, messages []map[string]interface{}, toolDefs []map[string]interface{}) (*completionMessage, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, apperr.Upstream("completion", err)
	}

	reqBody := map[string]interface{}{
		"model":       e.model,
		"messages":    messages,
		"temperature": e.temperature,
		"stream":      false,
	}
	if len(toolDefs) > 0 {
		reqBody["tools"] = toolDefs
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/chat/completions", bytes.NewBuffer(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Upstream("completion", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, apperr.Upstream("completion", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body)))
	}

	var result struct {
		Choices []struct {
			Message completionMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, apperr.Upstream("completion", fmt.Errorf("failed to decode response: %w", err))
	}
	if len(result.Choices) == 0 {
		return nil, apperr.Upstream("completion", fmt.Errorf("no choices in response"))
	}

	return &result.Choices[0].Message, nil
}
