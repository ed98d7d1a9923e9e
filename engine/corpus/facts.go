package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// LoadDocument reads the plain-text reference corpus.
func LoadDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("corpus: read document %s: %w", path, err)
	}
	return string(data), nil
}

// LoadStructuredFacts reads and flattens the structured facts file.
func LoadStructuredFacts(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: read facts %s: %w", path, err)
	}
	lines, err := FlattenFacts(data)
	if err != nil {
		return nil, fmt.Errorf("corpus: facts %s: %w", path, err)
	}
	return lines, nil
}

// FlattenFacts parses a JSON document with a top-level "retirement_facts"
// object and flattens its nested keys into "key path: value" lines, with
// underscores rendered as spaces. Keys are emitted in sorted order at
// each level so the output is deterministic.
func FlattenFacts(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	root, ok := doc["retirement_facts"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("missing retirement_facts object")
	}

	var lines []string
	flattenInto("", root, &lines)
	return lines, nil
}

func flattenInto(prefix string, node map[string]any, out *[]string) {
	keys := make([]string, 0, len(node))
	for k := range node {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		path := strings.ReplaceAll(k, "_", " ")
		if prefix != "" {
			path = prefix + " " + path
		}
		switch v := node[k].(type) {
		case map[string]any:
			flattenInto(path, v, out)
		case []any:
			*out = append(*out, fmt.Sprintf("%s: %s", path, joinScalars(v)))
		default:
			*out = append(*out, fmt.Sprintf("%s: %v", path, v))
		}
	}
}

func joinScalars(items []any) string {
	parts := make([]string, len(items))
	for i, v := range items {
		parts[i] = fmt.Sprintf("%v", v)
	}
	return strings.Join(parts, ", ")
}
