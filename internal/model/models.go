// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures exchanged with the chat backend.
package model

import (
	"fmt"
	"strings"
)

// PreferredDefaultModel is selected on start-up whenever the backend offers it.
const PreferredDefaultModel = "gpt-3.5-turbo"

// =============================================================================
// MODEL DESCRIPTOR
// =============================================================================

// ModelDescriptor describes a model offered by the backend.
// Identity is the (Provider, Name) pair; DisplayName is for humans only.
type ModelDescriptor struct {
	// Provider is the backend provider identifier ("openai", "anthropic")
	Provider string `json:"provider"`

	// Name is the model identifier used in API calls
	Name string `json:"name"`

	// DisplayName is the human-readable name shown in the picker
	DisplayName string `json:"display_name"`

	// Description is an optional one-line summary
	Description string `json:"description,omitempty"`
}

// Key returns the "provider/name" identity of the model.
func (m ModelDescriptor) Key() string {
	return m.Provider + "/" + m.Name
}

// Label returns the display name, falling back to the key.
func (m ModelDescriptor) Label() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.Key()
}

// Same reports whether two descriptors identify the same model.
func (m ModelDescriptor) Same(other ModelDescriptor) bool {
	return m.Provider == other.Provider && m.Name == other.Name
}

// String implements fmt.Stringer.
func (m ModelDescriptor) String() string {
	return m.Key()
}

// =============================================================================
// SELECTION HELPERS
// =============================================================================

// PickDefault chooses the default model from a backend-ordered list.
// A model named exactly PreferredDefaultModel wins regardless of position,
// otherwise the first entry is used. Returns false for an empty list.
func PickDefault(models []ModelDescriptor) (ModelDescriptor, bool) {
	for _, m := range models {
		if m.Name == PreferredDefaultModel {
			return m, true
		}
	}
	if len(models) == 0 {
		return ModelDescriptor{}, false
	}
	return models[0], true
}

// FindModel looks up a model by provider and name.
func FindModel(models []ModelDescriptor, provider, name string) (ModelDescriptor, bool) {
	for _, m := range models {
		if m.Provider == provider && m.Name == name {
			return m, true
		}
	}
	return ModelDescriptor{}, false
}

// ParseModelKey splits a "provider/name" key.
// Model names may themselves contain slashes, so only the first one separates.
func ParseModelKey(key string) (provider, name string, err error) {
	key = strings.TrimSpace(key)
	idx := strings.Index(key, "/")
	if idx <= 0 || idx == len(key)-1 {
		return "", "", fmt.Errorf("invalid model %q: expected provider/name", key)
	}
	return key[:idx], key[idx+1:], nil
}
