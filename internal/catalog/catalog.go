// Package catalog is the static capability catalogue for agent configurations:
// allowed providers, models per provider, temperature bounds, the tool set and
// supported database types. Pure data, no state.
package catalog

// Model providers
const (
	ProviderAzureOpenAI = "azure_openai"
	ProviderAnthropic   = "anthropic"
	ProviderGoogle      = "google"
)

// Tool names
const (
	ToolWebSearch       = "web_search"
	ToolCodeInterpreter = "code_interpreter"
	ToolPostgresQuery   = "postgres_query_tool"
	ToolMongoQuery      = "mongo_query_tool"
	ToolMySQLQuery      = "mysql_query_tool"
)

// Database types
const (
	DatabaseMongoDB  = "mongodb"
	DatabasePostgres = "postgres"
	DatabaseMySQL    = "mysql"
)

// Defaults and bounds
const (
	DefaultProvider     = ProviderAzureOpenAI
	DefaultPrompt       = "You are a helpful assistant."
	DefaultTemperature  = 0.7
	TemperatureMin      = 0.0
	TemperatureMax      = 1.0
	DefaultDatabaseType = DatabaseMongoDB
)

var providers = []string{ProviderAzureOpenAI, ProviderAnthropic, ProviderGoogle}

var modelsByProvider = map[string][]string{
	ProviderAzureOpenAI: {"azure_openai:gpt-5-nano", "gpt-5", "gpt-5-mini"},
	ProviderAnthropic:   {"claude-3", "claude-2.1"},
	ProviderGoogle:      {"gemini-1.5", "gemini-pro"},
}

var toolNames = []string{
	ToolWebSearch,
	ToolCodeInterpreter,
	ToolPostgresQuery,
	ToolMongoQuery,
	ToolMySQLQuery,
}

var databaseTypes = []string{DatabaseMongoDB, DatabasePostgres, DatabaseMySQL}

// Providers returns the allowed model providers.
func Providers() []string {
	return append([]string(nil), providers...)
}

// ModelsFor returns the allowed model list for one provider. An unknown
// provider yields an empty list, not an error.
func ModelsFor(provider string) []string {
	models, ok := modelsByProvider[provider]
	if !ok {
		return []string{}
	}
	return append([]string(nil), models...)
}

// IsProvider reports whether name is a known model provider.
func IsProvider(name string) bool {
	_, ok := modelsByProvider[name]
	return ok
}

// ModelAllowed reports whether model belongs to the provider's allowed list.
func ModelAllowed(provider, model string) bool {
	for _, m := range modelsByProvider[provider] {
		if m == model {
			return true
		}
	}
	return false
}

// ToolNames returns the fixed tool catalogue.
func ToolNames() []string {
	return append([]string(nil), toolNames...)
}

// IsTool reports whether name is in the fixed tool catalogue.
func IsTool(name string) bool {
	for _, t := range toolNames {
		if t == name {
			return true
		}
	}
	return false
}

// DatabaseTypes returns the supported database types.
func DatabaseTypes() []string {
	return append([]string(nil), databaseTypes...)
}

// IsDatabaseType reports whether name is a supported database type.
func IsDatabaseType(name string) bool {
	for _, d := range databaseTypes {
		if d == name {
			return true
		}
	}
	return false
}

// FieldSpec describes one configurable agent field for the options endpoint.
type FieldSpec struct {
	Type              string              `json:"type"`
	Choices           []string            `json:"choices,omitempty"`
	ChoicesByProvider map[string][]string `json:"choices_by_provider,omitempty"`
	Default           interface{}         `json:"default,omitempty"`
	Min               *float64            `json:"min,omitempty"`
	Max               *float64            `json:"max,omitempty"`
	Description       string              `json:"description"`
}

// Spec returns the full capability catalogue, shaped for the
// GET /agents/config/options endpoint.
func Spec() map[string]FieldSpec {
	tMin := float64(TemperatureMin)
	tMax := float64(TemperatureMax)
	byProvider := make(map[string][]string, len(modelsByProvider))
	for p := range modelsByProvider {
		byProvider[p] = ModelsFor(p)
	}
	return map[string]FieldSpec{
		"model_provider": {
			Type:        "str",
			Choices:     Providers(),
			Default:     DefaultProvider,
			Description: "Which provider hosts the model.",
		},
		"model": {
			Type:              "str",
			ChoicesByProvider: byProvider,
			Description:       "The model name to use.",
		},
		"temperature": {
			Type:        "float",
			Min:         &tMin,
			Max:         &tMax,
			Default:     DefaultTemperature,
			Description: "Controls randomness in generation.",
		},
		"prompt": {
			Type:        "str",
			Default:     DefaultPrompt,
			Description: "Base prompt for the agent.",
		},
		"tools": {
			Type:        "list[str]",
			Choices:     ToolNames(),
			Default:     []string{},
			Description: "Enabled tools for the agent.",
		},
		"database_type": {
			Type:        "str",
			Choices:     DatabaseTypes(),
			Default:     DefaultDatabaseType,
			Description: "The type of database to connect to.",
		},
	}
}
