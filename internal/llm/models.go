package llm

import (
	"fmt"
	"sort"
)

// ModelSpec maps a short alias to a provider model and its pricing
type ModelSpec struct {
	Alias    string
	Model    string
	Provider string
	// USD per million tokens
	InputPrice  float64
	OutputPrice float64
}

// DefaultModel is the alias used when none is configured
const DefaultModel = "haiku"

var models = map[string]ModelSpec{
	"haiku":        {Alias: "haiku", Model: "claude-haiku-4-5-20251001", Provider: ProviderAnthropic, InputPrice: 1.00, OutputPrice: 5.00},
	"sonnet":       {Alias: "sonnet", Model: "claude-sonnet-4-20250514", Provider: ProviderAnthropic, InputPrice: 3.00, OutputPrice: 15.00},
	"o4-mini":      {Alias: "o4-mini", Model: "o4-mini-2025-04-16", Provider: ProviderOpenAI, InputPrice: 1.10, OutputPrice: 4.40},
	"gpt-4o-mini":  {Alias: "gpt-4o-mini", Model: "gpt-4o-mini", Provider: ProviderOpenAI, InputPrice: 0.15, OutputPrice: 0.60},
	"gpt-4.1-mini": {Alias: "gpt-4.1-mini", Model: "gpt-4.1-mini", Provider: ProviderOpenAI, InputPrice: 0.40, OutputPrice: 1.60},
	"llama3.1":     {Alias: "llama3.1", Model: "llama3.1:8b", Provider: ProviderOllama},
}

// Lookup returns the spec registered under alias
func Lookup(alias string) (ModelSpec, error) {
	if alias == "" {
		alias = DefaultModel
	}
	spec, ok := models[alias]
	if !ok {
		return ModelSpec{}, fmt.Errorf("unknown model %q (choose one of %v)", alias, Aliases())
	}
	return spec, nil
}

// Aliases lists the registered aliases in sorted order
func Aliases() []string {
	out := make([]string, 0, len(models))
	for a := range models {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Cost estimates USD for the given token counts
func (m ModelSpec) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)/1e6*m.InputPrice + float64(outputTokens)/1e6*m.OutputPrice
}

// String renders provider/model
func (m ModelSpec) String() string {
	return m.Provider + "/" + m.Model
}
