// Copyright 2025 bookworm Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logics

import (
	"math"
	"strings"

	"github.com/bits-and-blooms/bitset"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"

	"github.com/bookclub-io/bookworm/base"
	"github.com/bookclub-io/bookworm/storage/data"
)

// GenreIndex holds a binary genre profile per book, one bit per distinct
// genre token. The vocabulary is assigned in first-seen order and is only
// valid for the index that built it. The index is immutable after
// construction and safe for concurrent readers.
type GenreIndex struct {
	vocab    *base.SparseIdSet
	profiles map[string]*bitset.BitSet
	books    []string
}

// NewGenreIndex builds genre profiles from the book catalog. Genre strings
// are split on commas, tokens are trimmed and lowercased, empty tokens are
// dropped. A book with an empty genre string gets an all-zero profile.
func NewGenreIndex(books []data.BookStats) *GenreIndex {
	index := &GenreIndex{
		vocab:    base.NewSparseIdSet(),
		profiles: make(map[string]*bitset.BitSet, len(books)),
		books:    make([]string, 0, len(books)),
	}
	for _, book := range books {
		profile := bitset.New(uint(index.vocab.Len()))
		for _, token := range strings.Split(book.Genres, ",") {
			token = strings.ToLower(strings.TrimSpace(token))
			if token == "" {
				continue
			}
			index.vocab.Add(token)
			profile.Set(uint(index.vocab.ToDenseId(token)))
		}
		index.profiles[book.BookId] = profile
		index.books = append(index.books, book.BookId)
	}
	return index
}

// Len returns the number of books in the index.
func (index *GenreIndex) Len() int {
	return len(index.books)
}

// Similarity returns the cosine similarity of the binary genre profiles of
// two books. Unknown books and all-zero profiles score 0.
func (index *GenreIndex) Similarity(a, b string) float64 {
	profileA, okA := index.profiles[a]
	profileB, okB := index.profiles[b]
	if !okA || !okB {
		return 0
	}
	countA, countB := profileA.Count(), profileB.Count()
	if countA == 0 || countB == 0 {
		return 0
	}
	common := profileA.IntersectionCardinality(profileB)
	return float64(common) / (math.Sqrt(float64(countA)) * math.Sqrt(float64(countB)))
}

// RecommendForBook ranks every book in the catalog by genre similarity to the
// seed book, skipping the seed itself and the excluded set. Zero similarity
// books still rank, below any book with a shared genre. An unknown seed book
// is an error.
func (index *GenreIndex) RecommendForBook(bookId string, exclude mapset.Set[string], n int) ([]string, error) {
	if _, exist := index.profiles[bookId]; !exist {
		return nil, errors.Annotate(data.ErrBookNotExist, bookId)
	}
	candidates := make(map[string]float64, len(index.books))
	for _, other := range index.books {
		if other == bookId {
			continue
		}
		candidates[other] = index.Similarity(bookId, other)
	}
	if exclude == nil {
		exclude = mapset.NewSet[string]()
	}
	return Rank(candidates, exclude, n), nil
}

// RecommendByHistory ranks the catalog against a user's reading history. A
// candidate's score is its best similarity to any book of the history. Books
// of the history itself and the excluded set are skipped.
func (index *GenreIndex) RecommendByHistory(history []string, exclude mapset.Set[string], n int) []string {
	seen := mapset.NewSet[string](history...)
	if exclude != nil {
		seen = seen.Union(exclude)
	}
	candidates := make(map[string]float64, len(index.books))
	for _, other := range index.books {
		if seen.Contains(other) {
			continue
		}
		candidates[other] = 0
		for _, owned := range history {
			if similarity := index.Similarity(owned, other); similarity > candidates[other] {
				candidates[other] = similarity
			}
		}
	}
	return Rank(candidates, nil, n)
}
