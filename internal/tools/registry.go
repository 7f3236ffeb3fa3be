// Package tools holds the fixed tool catalogue an agent may enable:
// web search, code execution and the three database query tools.
package tools

import (
	"context"
	"fmt"
	"log"
	"sync"

	"agenthub/internal/models"
)

// Invocation carries per-turn context into a tool execution, most importantly
// the agent's database binding for the query tools.
type Invocation struct {
	SessionID string
	Database  *models.DatabaseConfig
}

// ExecuteFunc is the function signature for tool execution
type ExecuteFunc func(ctx context.Context, args map[string]interface{}, inv *Invocation) (string, error)

// Tool represents a callable tool with its metadata and execution function
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
	Execute     ExecuteFunc
}

// Options configures the external endpoints the built-in tools talk to.
type Options struct {
	SearxngURL string
	SandboxURL string
}

// Registry manages the closed set of available tools. Resolution of an
// unknown name is an absence, never a fault.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
}

// NewRegistry builds a registry with all built-in tools registered.
func NewRegistry(opts Options) *Registry {
	r := &Registry{tools: make(map[string]*Tool)}

	r.mustRegister(newWebSearchTool(opts.SearxngURL))
	r.mustRegister(newCodeInterpreterTool(opts.SandboxURL))
	r.mustRegister(newMongoQueryTool())
	r.mustRegister(newPostgresQueryTool())
	r.mustRegister(newMySQLQueryTool())

	return r
}

// Register adds a new tool to the registry
func (r *Registry) Register(tool *Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tool.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if tool.Execute == nil {
		return fmt.Errorf("tool %s must have an Execute function", tool.Name)
	}
	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("tool %s is already registered", tool.Name)
	}

	r.tools[tool.Name] = tool
	return nil
}

func (r *Registry) mustRegister(tool *Tool) {
	if err := r.Register(tool); err != nil {
		panic(err)
	}
}

// Get retrieves a tool by name
func (r *Registry) Get(name string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, exists := r.tools[name]
	return tool, exists
}

// Resolve maps enabled tool names to tools. Unknown names are silently
// dropped so configs can drift across versions without breaking agents.
func (r *Registry) Resolve(names []string) []*Tool {
	resolved := make([]*Tool, 0, len(names))
	for _, name := range names {
		tool, exists := r.Get(name)
		if !exists {
			log.Printf("⚠️  [TOOLS] Unknown tool %q in agent config, skipping", name)
			continue
		}
		resolved = append(resolved, tool)
	}
	return resolved
}

// Execute runs a tool by name with given arguments
func (r *Registry) Execute(ctx context.Context, name string, args map[string]interface{}, inv *Invocation) (string, error) {
	tool, exists := r.Get(name)
	if !exists {
		return "", fmt.Errorf("tool %s not found", name)
	}
	return tool.Execute(ctx, args, inv)
}

// Count returns the number of registered tools
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Definitions renders tools in the wire format the completion endpoint expects.
func Definitions(tools []*Tool) []map[string]interface{} {
	defs := make([]map[string]interface{}, 0, len(tools))
	for _, tool := range tools {
		defs = append(defs, map[string]interface{}{
			"type": "function",
			"function": map[string]interface{}{
				"name":        tool.Name,
				"description": tool.Description,
				"parameters":  tool.Parameters,
			},
		})
	}
	return defs
}

func stringArg(args map[string]interface{}, key string) (string, error) {
	value, ok := args[key].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	return value, nil
}
