// Somnographus - Sleep Sound Recommendation Service
// Copyright 2026 Kooala Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kooala/somnographus

package catalog

import (
	"fmt"
	"os"
	"sort"

	"github.com/goccy/go-json"
)

// Candidate is an index query result: a catalog entry annotated with its
// raw squared Euclidean distance and the similarity transform of it.
type Candidate struct {
	Entry Entry `json:"entry"`

	// Distance is the squared Euclidean distance to the query vector.
	Distance float64 `json:"distance"`

	// Similarity is 1/(1+Distance): monotonically decreasing in distance,
	// bounded in (0,1], never divides by zero.
	Similarity float64 `json:"similarity"`
}

// indexArtifact is the on-disk index format: one vector per catalog entry,
// paired by position.
type indexArtifact struct {
	Dimension int         `json:"dimension"`
	Vectors   [][]float32 `json:"vectors"`
}

// FlatIndex is an exhaustive nearest-neighbor index over the catalog's
// precomputed embedding vectors. The catalog is small enough that a flat scan
// beats any approximate structure; results are exact and deterministic.
// Immutable after load, safe for concurrent queries.
type FlatIndex struct {
	catalog *Catalog
	dim     int
	vectors [][]float32
}

// LoadIndex reads an index artifact and validates it against the catalog:
// one vector per entry, uniform dimension.
func LoadIndex(path string, c *Catalog) (*FlatIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	var art indexArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}

	return NewFlatIndex(c, art.Dimension, art.Vectors)
}

// NewFlatIndex builds an index over the given vectors.
func NewFlatIndex(c *Catalog, dim int, vectors [][]float32) (*FlatIndex, error) {
	if c == nil {
		return nil, fmt.Errorf("index requires a catalog")
	}
	if len(vectors) != c.Size() {
		return nil, fmt.Errorf("index has %d vectors for %d catalog entries", len(vectors), c.Size())
	}
	if dim <= 0 && len(vectors) > 0 {
		dim = len(vectors[0])
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dim)
		}
	}

	return &FlatIndex{catalog: c, dim: dim, vectors: vectors}, nil
}

// Dimension returns the embedding dimension the index was built with.
func (ix *FlatIndex) Dimension() int {
	return ix.dim
}

// Size returns the number of indexed vectors.
func (ix *FlatIndex) Size() int {
	return len(ix.vectors)
}

// Query returns the k nearest catalog entries to the query vector by
// ascending squared Euclidean distance. Ties keep index order (stable sort),
// so identical vectors rank in catalog position order. k is clamped to the
// catalog size; k <= 0 returns nil.
func (ix *FlatIndex) Query(vec []float32, k int) ([]Candidate, error) {
	if len(vec) != ix.dim {
		return nil, fmt.Errorf("query vector has dimension %d, want %d", len(vec), ix.dim)
	}
	if k <= 0 {
		return nil, nil
	}
	if k > len(ix.vectors) {
		k = len(ix.vectors)
	}

	candidates := make([]Candidate, len(ix.vectors))
	for i, v := range ix.vectors {
		d := squaredL2(vec, v)
		candidates[i] = Candidate{
			Entry:      ix.catalog.At(i),
			Distance:   d,
			Similarity: 1.0 / (1.0 + d),
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].Distance < candidates[b].Distance
	})

	return candidates[:k], nil
}

// Diversify caps the per-category share of a result list: keeps at most
// perCategory top-similarity candidates from each category, re-sorts by
// similarity descending, and truncates to k. Used to keep a single skewed
// vector cluster from dominating the list.
func Diversify(candidates []Candidate, perCategory, k int) []Candidate {
	if perCategory <= 0 || len(candidates) == 0 {
		return candidates
	}

	// candidates arrive sorted by similarity descending, so the first
	// perCategory hits per category are that category's best.
	kept := make([]Candidate, 0, len(candidates))
	counts := make(map[string]int)
	for _, c := range candidates {
		if counts[c.Entry.Category] >= perCategory {
			continue
		}
		counts[c.Entry.Category]++
		kept = append(kept, c)
	}

	sort.SliceStable(kept, func(a, b int) bool {
		return kept[a].Similarity > kept[b].Similarity
	})

	if k > 0 && len(kept) > k {
		kept = kept[:k]
	}
	return kept
}

// squaredL2 computes the squared Euclidean distance between two vectors.
func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
