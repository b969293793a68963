// Somnographus - Sleep Sound Recommendation Service
// Copyright 2026 Kooala Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kooala/somnographus

// Package catalog provides the sound catalog and its similarity index.
//
// Both are immutable artifacts produced by an offline build step: the catalog
// is a JSON list of sound entries, the index is one embedding vector per
// catalog entry, paired by position. Both are loaded once at startup and are
// safe for unlimited concurrent readers.
package catalog

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// Entry is a single recommendable sound in the catalog.
// Entries are immutable after load; the ID (the sound filename) is the join
// key between index results, preference lists, and recommendation history.
type Entry struct {
	// ID is the sound filename, unique within the catalog.
	ID string `json:"filename"`

	// Category groups sounds by kind (nature, white noise, ASMR, ...).
	Category string `json:"category"`

	// Effect is the textual description of the sound's effect, the text
	// that was embedded when the index was built.
	Effect string `json:"effect"`
}

// Catalog is the fixed set of recommendable sounds.
type Catalog struct {
	entries []Entry
	byID    map[string]int
}

// Load reads a catalog artifact from disk.
// Duplicate IDs and empty IDs are load errors: downstream scoring joins on ID.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	return New(entries)
}

// New builds a catalog from entries, validating ID uniqueness.
func New(entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}

	byID := make(map[string]int, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("catalog entry %d has empty filename", i)
		}
		if _, dup := byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog entry %q", e.ID)
		}
		byID[e.ID] = i
	}

	return &Catalog{entries: entries, byID: byID}, nil
}

// Size returns the number of catalog entries.
func (c *Catalog) Size() int {
	return len(c.entries)
}

// At returns the entry at position i.
func (c *Catalog) At(i int) Entry {
	return c.entries[i]
}

// Get looks up an entry by ID.
func (c *Catalog) Get(id string) (Entry, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Categories returns the number of distinct categories.
func (c *Catalog) Categories() int {
	seen := make(map[string]struct{}, len(c.entries))
	for _, e := range c.entries {
		seen[e.Category] = struct{}{}
	}
	return len(seen)
}
