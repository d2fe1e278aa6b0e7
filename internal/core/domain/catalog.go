package domain

import (
	"maps"
	"sort"
)

// Catalog is a search-ready index of a document's page text.
type Catalog struct {
	// Pages holds one entry per converted page, in page order.
	Pages []CatalogPage
}

// CatalogPage holds the term statistics of a single page.
type CatalogPage struct {
	// Page is the 1-based page index.
	Page int

	// Length is the number of tokens on the page.
	Length int

	// Terms maps each token to its frequency on the page.
	Terms map[string]int
}

// PageHit is a page matching a catalog search.
type PageHit struct {
	// Page is the 1-based page index.
	Page int `json:"page"`

	// Score is the relevance score. Higher is more relevant.
	Score float64 `json:"score"`
}

// NumPages returns the number of indexed pages.
func (c *Catalog) NumPages() int {
	if c == nil {
		return 0
	}
	return len(c.Pages)
}

// Words returns the sorted lexicon of the catalog.
func (c *Catalog) Words() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]struct{})
	for _, page := range c.Pages {
		for term := range page.Terms {
			seen[term] = struct{}{}
		}
	}
	words := make([]string, 0, len(seen))
	for term := range seen {
		words = append(words, term)
	}
	sort.Strings(words)
	return words
}

// Contains returns true if the word occurs on any page.
func (c *Catalog) Contains(word string) bool {
	if c == nil {
		return false
	}
	for _, page := range c.Pages {
		if page.Terms[word] > 0 {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the catalog.
func (c *Catalog) Clone() *Catalog {
	if c == nil {
		return nil
	}
	pages := make([]CatalogPage, len(c.Pages))
	for i, page := range c.Pages {
		pages[i] = CatalogPage{Page: page.Page, Length: page.Length, Terms: maps.Clone(page.Terms)}
	}
	return &Catalog{Pages: pages}
}
