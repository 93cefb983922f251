package runtime

// SupportedAssistantModels is the fixed allow-list of chat models the remote
// assistant service accepts.
var SupportedAssistantModels = []string{
	"gpt-4o",
	"gpt-4o-mini",
	"gpt-4-turbo",
	"gpt-4-turbo-preview",
	"gpt-4",
	"gpt-3.5-turbo",
}

// DefaultAssistantModel is used when the configured model is unsupported.
const DefaultAssistantModel = "gpt-3.5-turbo"

// ModelConfig is the resolved chat-model selection, validated once at
// startup and never re-checked.
type ModelConfig struct {
	// Model is the model actually used for assistants
	Model string

	// Requested is the model asked for in the environment
	Requested string

	// Fallback is true when Requested was unsupported and Model is the
	// default instead
	Fallback bool
}

// ResolveModel validates the requested model against the allow-list,
// falling back to the default when unsupported. The caller is expected to
// surface a visible warning when Fallback is set.
func ResolveModel(requested string) ModelConfig {
	if requested == "" {
		requested = "gpt-4o-mini"
	}
	for _, m := range SupportedAssistantModels {
		if m == requested {
			return ModelConfig{Model: m, Requested: requested}
		}
	}
	return ModelConfig{Model: DefaultAssistantModel, Requested: requested, Fallback: true}
}
