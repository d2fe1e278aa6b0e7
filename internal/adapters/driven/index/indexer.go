// Package index builds page text catalogs and ranks pages with Okapi BM25.
package index

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driven"
)

// Ensure Indexer implements the interface.
var _ driven.Indexer = (*Indexer)(nil)

// Default BM25 parameters.
const (
	DefaultK1 = 1.2
	DefaultB  = 0.75
)

// Indexer builds catalogs in memory. It holds no state between calls.
type Indexer struct {
	k1 float64
	b  float64
}

// New creates an indexer with the default BM25 parameters.
func New() *Indexer {
	return &Indexer{k1: DefaultK1, b: DefaultB}
}

// Build creates a catalog with one entry per page. Empty input yields
// an empty catalog rather than nil.
func (x *Indexer) Build(pages []string) (*domain.Catalog, error) {
	catalog := &domain.Catalog{Pages: make([]domain.CatalogPage, len(pages))}
	for i, text := range pages {
		tokens := Tokenize(text)
		terms := make(map[string]int, len(tokens))
		for _, token := range tokens {
			terms[token]++
		}
		catalog.Pages[i] = domain.CatalogPage{Page: i + 1, Length: len(tokens), Terms: terms}
	}
	return catalog, nil
}

// Search ranks pages by BM25 score, best first. Ties go to the lower
// page number. A limit of zero or less returns every matching page.
func (x *Indexer) Search(catalog *domain.Catalog, query string, limit int) []domain.PageHit {
	terms := uniqueTokens(query)
	if catalog == nil || len(catalog.Pages) == 0 || len(terms) == 0 {
		return nil
	}

	n := float64(len(catalog.Pages))
	var totalLength int
	for _, page := range catalog.Pages {
		totalLength += page.Length
	}
	avgLength := float64(totalLength) / n
	if avgLength == 0 {
		return nil
	}

	idf := make(map[string]float64, len(terms))
	for _, term := range terms {
		var df float64
		for _, page := range catalog.Pages {
			if page.Terms[term] > 0 {
				df++
			}
		}
		idf[term] = math.Log((n-df+0.5)/(df+0.5) + 1)
	}

	var hits []domain.PageHit
	for _, page := range catalog.Pages {
		var score float64
		for _, term := range terms {
			tf := float64(page.Terms[term])
			if tf == 0 {
				continue
			}
			norm := x.k1 * (1 - x.b + x.b*float64(page.Length)/avgLength)
			score += idf[term] * tf * (x.k1 + 1) / (tf + norm)
		}
		if score > 0 {
			hits = append(hits, domain.PageHit{Page: page.Page, Score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Page < hits[j].Page
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// Tokenize splits text into lowercase runs of letters and digits.
// Invalid UTF-8 is dropped.
func Tokenize(text string) []string {
	text = strings.ToValidUTF8(text, " ")
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func uniqueTokens(text string) []string {
	tokens := Tokenize(text)
	seen := make(map[string]struct{}, len(tokens))
	result := tokens[:0]
	for _, token := range tokens {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		result = append(result, token)
	}
	return result
}
