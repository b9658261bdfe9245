// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package version

import "sync"

// Transformer rewrites a response body into the shape an older API version
// expects.
type Transformer func(data interface{}) interface{}

// The registry stays empty while Version20261001 is the only published
// version; every versioned endpoint still routes through Transform so a
// breaking change only needs a RegisterTransformer call.
var (
	mu           sync.RWMutex
	transformers = map[string]map[string]Transformer{}
)

// Transform applies the transformer registered for version and endpoint
// (for example "session.connect"). Data passes through unchanged for the
// latest version and for pairs with no transformer.
func Transform(version, endpoint string, data interface{}) interface{} {
	if version == LatestVersion {
		return data
	}
	mu.RLock()
	t, ok := transformers[version][endpoint]
	mu.RUnlock()
	if !ok {
		return data
	}
	return t(data)
}

// RegisterTransformer adds a transformer for version and endpoint. Call it
// from init when LatestVersion moves on.
func RegisterTransformer(version, endpoint string, t Transformer) {
	mu.Lock()
	defer mu.Unlock()
	if transformers[version] == nil {
		transformers[version] = make(map[string]Transformer)
	}
	transformers[version][endpoint] = t
}
