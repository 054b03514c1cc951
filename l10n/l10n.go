// Package l10n resolves display labels from flat YAML message bundles.
package l10n

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed messages_en.yaml
var defaultMessages []byte

// Bundle is a set of messages keyed by their dotted name.
// It is read-only after construction and safe for concurrent use.
type Bundle struct {
	messages map[string]string
}

// Default returns the embedded English bundle.
func Default() *Bundle {
	b, err := Parse(defaultMessages)
	if err != nil {
		panic(fmt.Sprintf("l10n: embedded messages are invalid: %v", err))
	}
	return b
}

// Parse builds a bundle from a flat YAML map of message keys to labels.
func Parse(data []byte) (*Bundle, error) {
	messages := map[string]string{}
	if err := yaml.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("l10n: failed to parse messages: %w", err)
	}
	return &Bundle{messages: messages}, nil
}

// Load returns the default bundle overridden by the messages in the file at path.
// An empty path returns the default bundle.
func Load(path string) (*Bundle, error) {
	b := Default()
	if path == "" {
		return b, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("l10n: %w", err)
	}
	overrides, err := Parse(data)
	if err != nil {
		return nil, err
	}
	for k, v := range overrides.messages {
		b.messages[k] = v
	}
	return b, nil
}

// Translate returns the message for namespace.key.
// A missing message resolves to the dotted key itself.
func (b *Bundle) Translate(namespace, key string) string {
	full := strings.Join([]string{namespace, key}, ".")
	if msg, ok := b.messages[full]; ok {
		return msg
	}
	return full
}

// Len returns the number of messages in the bundle.
func (b *Bundle) Len() int {
	return len(b.messages)
}
