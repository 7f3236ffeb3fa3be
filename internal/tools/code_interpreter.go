package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"agenthub/internal/catalog"

	"github.com/sirupsen/logrus"
)

const codeExecTimeoutSeconds = 30

// sandboxClient talks to the code execution microservice.
type sandboxClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

type sandboxExecuteRequest struct {
	Code    string `json:"code"`
	Timeout int    `json:"timeout,omitempty"` // seconds
}

type sandboxExecuteResponse struct {
	Success bool    `json:"success"`
	Stdout  string  `json:"stdout"`
	Stderr  string  `json:"stderr"`
	Error   *string `json:"error"`
}

func newSandboxClient(baseURL string) *sandboxClient {
	return &sandboxClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logrus.New(),
	}
}

// Execute runs Python code in the sandbox and returns its output.
func (c *sandboxClient) Execute(ctx context.Context, code string) (*sandboxExecuteResponse, error) {
	reqBody, err := json.Marshal(sandboxExecuteRequest{
		Code:    code,
		Timeout: codeExecTimeoutSeconds,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal execute request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/execute", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create execute request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.WithField("code_len", len(code)).Debug("Executing code in sandbox")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sandbox request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("sandbox error (status %d): %s", resp.StatusCode, string(body))
	}

	var result sandboxExecuteResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode sandbox response: %w", err)
	}
	return &result, nil
}

// newCodeInterpreterTool executes Python code in the sandbox microservice.
func newCodeInterpreterTool(sandboxURL string) *Tool {
	client := newSandboxClient(sandboxURL)

	return &Tool{
		Name:        catalog.ToolCodeInterpreter,
		Description: "Execute Python code in a sandbox and return stdout/stderr. Use for calculations, data processing and analysis.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"code": map[string]interface{}{
					"type":        "string",
					"description": "Python code to execute",
				},
			},
			"required": []string{"code"},
		},
		Execute: func(ctx context.Context, args map[string]interface{}, _ *Invocation) (string, error) {
			code, err := stringArg(args, "code")
			if err != nil {
				return "", err
			}

			result, err := client.Execute(ctx, code)
			if err != nil {
				return "", err
			}

			if !result.Success {
				msg := result.Stderr
				if result.Error != nil && *result.Error != "" {
					msg = *result.Error
				}
				return fmt.Sprintf("Execution failed: %s", msg), nil
			}

			output := result.Stdout
			if result.Stderr != "" {
				output = fmt.Sprintf("%s\n[stderr]\n%s", output, result.Stderr)
			}
			if strings.TrimSpace(output) == "" {
				output = "(no output)"
			}
			return output, nil
		},
	}
}
