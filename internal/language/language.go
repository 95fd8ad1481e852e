// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package language translates MARC language codes to full names and
// renders list-valued paper fields as bracketed text.
package language

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

//go:embed codes.yaml
var codesYAML []byte

// Lookup maps a language code to its display name.
type Lookup interface {
	Name(code string) string
}

// Table is a code-to-name map. Codes are lowercase.
type Table map[string]string

// Default returns the built-in MARC code table.
func Default() Table {
	t, err := parse(codesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded language table: %v", err))
	}
	return t
}

// LoadFile returns the built-in table overlaid with the entries of a YAML
// file mapping code to name. An empty path returns the built-in table.
func LoadFile(path string) (Table, error) {
	t := Default()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading language table %s: %w", path, err)
	}
	extra, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing language table %s: %w", path, err)
	}
	for k, v := range extra {
		t[k] = v
	}
	return t, nil
}

func parse(data []byte) (Table, error) {
	raw := map[string]string{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	t := make(Table, len(raw))
	for k, v := range raw {
		t[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return t, nil
}

// Name returns the full name for code. Unknown codes are returned as given.
func (t Table) Name(code string) string {
	if n, ok := t[strings.ToLower(strings.TrimSpace(code))]; ok {
		return n
	}
	return code
}

// Translate maps every code through lk, keeping order.
func Translate(lk Lookup, codes []string) []string {
	if len(codes) == 0 {
		return nil
	}
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = lk.Name(c)
	}
	return out
}
