// Copyright (c) 2026 BVK Chaitanya

// Package db implements subcommands to inspect and edit the daemon's
// key/value database directly. Values are gob-encoded; the -value-type flag
// names the gobs type used to decode them.
package db

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"

	"github.com/bvk/flipbot/gobs"
)

func gobToJSON(typename string, data []byte) ([]byte, error) {
	value, err := gobs.NewByTypename(typename)
	if err != nil {
		return nil, err
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(value); err != nil {
		return nil, fmt.Errorf("could not gob-decode value as %q: %w", typename, err)
	}
	return json.MarshalIndent(value, "", "  ")
}

func jsonToGob(typename string, data []byte) ([]byte, error) {
	value, err := gobs.NewByTypename(typename)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, value); err != nil {
		return nil, fmt.Errorf("could not json-decode value as %q: %w", typename, err)
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(value); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
