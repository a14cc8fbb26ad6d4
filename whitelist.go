package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// loadWhitelist reads a JSON array of mnemonics. A file holding null or []
// yields an empty whitelist, which forbids every opcode.
func loadWhitelist(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read whitelist: %w", err)
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("whitelist %s: %w", path, err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}
