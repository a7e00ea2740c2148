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
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookclub-io/bookworm/storage/data"
)

func newGenreCatalog() []data.BookStats {
	return []data.BookStats{
		{BookId: "dune", Genres: "fiction, sci-fi"},
		{BookId: "foundation", Genres: "Fiction,Sci-Fi"},
		{BookId: "emma", Genres: "fiction, romance"},
		{BookId: "atlas", Genres: "maps"},
		{BookId: "blank", Genres: ""},
	}
}

func TestGenreSimilarity(t *testing.T) {
	index := NewGenreIndex(newGenreCatalog())
	assert.Equal(t, 5, index.Len())

	// identical profiles, tokens match case-insensitively
	assert.InDelta(t, 1.0, index.Similarity("dune", "foundation"), 1e-6)
	// one shared genre out of two each
	assert.InDelta(t, 0.5, index.Similarity("dune", "emma"), 1e-6)
	// symmetry
	assert.Equal(t, index.Similarity("dune", "emma"), index.Similarity("emma", "dune"))
	// no overlap
	assert.Zero(t, index.Similarity("dune", "atlas"))
	// empty genre string never divides by zero
	assert.Zero(t, index.Similarity("dune", "blank"))
	assert.Zero(t, index.Similarity("blank", "blank"))
	// unknown book
	assert.Zero(t, index.Similarity("dune", "nope"))
}

func TestRecommendForBook(t *testing.T) {
	index := NewGenreIndex(newGenreCatalog())
	ranked, err := index.RecommendForBook("dune", nil, 10)
	require.NoError(t, err)
	// the seed never recommends itself
	assert.NotContains(t, ranked, "dune")
	// closest profile first, unrelated books trail with zero score
	assert.Equal(t, []string{"foundation", "emma", "atlas", "blank"}, ranked)

	ranked, err = index.RecommendForBook("dune", mapset.NewSet("foundation"), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"emma", "atlas"}, ranked)

	_, err = index.RecommendForBook("nope", nil, 10)
	assert.ErrorIs(t, err, data.ErrBookNotExist)
}

func TestRecommendByHistory(t *testing.T) {
	index := NewGenreIndex(newGenreCatalog())
	// a reader of fiction gets fiction ranked above unrelated books
	ranked := index.RecommendByHistory([]string{"dune", "emma"}, nil, 10)
	assert.NotContains(t, ranked, "dune")
	assert.NotContains(t, ranked, "emma")
	require.Len(t, ranked, 3)
	assert.Equal(t, "foundation", ranked[0])
	assert.ElementsMatch(t, []string{"atlas", "blank"}, ranked[1:])
}
