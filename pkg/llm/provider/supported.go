package provider

import (
	"fmt"

	"github.com/papercomputeco/innerai/pkg/llm/provider/gemini"
)

// Supported provider type constants
const (
	Gemini = "gemini"
)

// SupportedProviders returns the list of all supported provider type names.
func SupportedProviders() []string {
	return []string{Gemini}
}

// Options carries the settings shared by every provider constructor.
type Options = gemini.Config

// New creates a new Provider instance for the given provider type.
// Returns an error if the provider type is not recognized.
func New(providerType string, opts Options) (Provider, error) {
	switch providerType {
	case Gemini:
		p, err := gemini.New(opts)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown provider type: %q (supported: %v)", providerType, SupportedProviders())
	}
}
