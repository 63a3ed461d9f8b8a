package localqueue

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pixway/pixway/internal/types"
)

// Template placeholders. Substitution happens on the serialized template
// text, so the engine never assumes anything about the workflow's node
// graph shape.
const (
	PlaceholderPrompt         = "{{PROMPT}}"
	PlaceholderNegativePrompt = "{{NEGATIVE_PROMPT}}"
	PlaceholderSourceImage    = "{{SOURCE_IMAGE}}"
	PlaceholderCheckpoint     = "{{CHECKPOINT}}"
	PlaceholderLora           = "{{LORA}}"
	PlaceholderDenoise        = "{{DENOISE}}"
)

// Substitutions maps placeholder tokens to their literal values.
type Substitutions map[string]string

// LoadTemplate reads a workflow template file.
func LoadTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", types.NewConfiguration("failed to load workflow template %s: %v", path, err)
	}
	if !json.Valid(data) {
		return "", types.NewConfiguration("workflow template %s is not valid JSON", path)
	}
	return string(data), nil
}

// Substitute replaces placeholder tokens in the serialized template and
// verifies the result still parses as JSON, catching a substituted value
// that broke the document's syntax. Values are escaped for JSON string
// context so prompts containing quotes or newlines survive.
func Substitute(template string, subs Substitutions) (json.RawMessage, error) {
	out := template
	for token, value := range subs {
		out = strings.ReplaceAll(out, token, escapeJSONString(value))
	}

	if !json.Valid([]byte(out)) {
		return nil, types.NewValidation("substituted workflow is not valid JSON")
	}
	return json.RawMessage(out), nil
}

// escapeJSONString escapes a value for inclusion inside a JSON string
// literal. Plain numbers pass through unchanged.
func escapeJSONString(value string) string {
	encoded, err := json.Marshal(value)
	if err != nil {
		// json.Marshal of a string cannot fail; keep the raw value.
		return value
	}
	// Drop only the surrounding delimiters; a value's own escaped quotes
	// (\" at either end) must survive.
	return string(encoded[1 : len(encoded)-1])
}

// buildSubstitutions assembles the full placeholder set for one job.
func buildSubstitutions(req *types.GenerationRequest, checkpoint, lora string, denoise float64, assetName string) Substitutions {
	negative := req.Options.String(types.OptNegativePrompt, "")
	if ck := req.Options.String(types.OptCheckpoint, ""); ck != "" {
		checkpoint = ck
	}
	if lr := req.Options.String(types.OptLora, ""); lr != "" {
		lora = lr
	}
	if dn := req.Options.String(types.OptDenoise, ""); dn != "" {
		denoise = parseDenoise(dn, denoise)
	}

	return Substitutions{
		PlaceholderPrompt:         req.Prompt,
		PlaceholderNegativePrompt: negative,
		PlaceholderSourceImage:    assetName,
		PlaceholderCheckpoint:     checkpoint,
		PlaceholderLora:           lora,
		PlaceholderDenoise:        fmt.Sprintf("%g", denoise),
	}
}

// parseDenoise parses a denoise strength option, falling back on def.
func parseDenoise(value string, def float64) float64 {
	var f float64
	if _, err := fmt.Sscanf(value, "%g", &f); err != nil || f <= 0 || f > 1 {
		return def
	}
	return f
}
