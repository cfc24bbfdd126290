// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-ssz library.

// Package presets loads named Ethereum consensus-layer presets (mainnet,
// minimal) into the map[string]any spec-value form consumed by
// ssz.NewCodec, so schemas tagged with dynssz-size/dynssz-max expressions
// such as "SYNC_COMMITTEE_SIZE" resolve against real preset constants
// instead of hand-written literals.
package presets

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed mainnet.yaml
var mainnetYAML []byte

//go:embed minimal.yaml
var minimalYAML []byte

// Mainnet returns the mainnet preset's spec values.
func Mainnet() (map[string]any, error) {
	return decode(mainnetYAML)
}

// Minimal returns the minimal preset's spec values.
func Minimal() (map[string]any, error) {
	return decode(minimalYAML)
}

// decode unmarshals preset YAML directly into a uint64-valued map, then
// widens it to map[string]any. Every preset constant is a non-negative
// integer, so parsing straight into map[string]uint64 avoids handing
// ssz.Codec.ResolveSpecValue ambiguous numeric types (YAML's default
// map[string]any decoding would produce plain int, not the uint64 that
// the rest of this library's spec values use).
func decode(data []byte) (map[string]any, error) {
	var raw map[string]uint64
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding preset yaml: %w", err)
	}

	specs := make(map[string]any, len(raw))
	for name, value := range raw {
		specs[name] = value
	}

	return specs, nil
}
