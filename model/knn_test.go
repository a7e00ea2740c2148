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

package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookclub-io/bookworm/dataset"
)

// newKNNTrainSet builds a matrix where books "a" and "b" are rated
// identically by their common raters, so their cosine similarity is one,
// while book "c" shares no rater with them.
func newKNNTrainSet() *dataset.Dataset {
	set := dataset.NewDataset()
	set.AddRating("u1", "a", 4)
	set.AddRating("u1", "b", 4)
	set.AddRating("u2", "a", 6)
	set.AddRating("u2", "b", 6)
	set.AddRating("u3", "a", 8)
	set.AddRating("u4", "c", 10)
	return set
}

func TestKNNFitEmpty(t *testing.T) {
	knn := NewKNN(nil)
	err := knn.Fit(context.Background(), dataset.NewDataset())
	assert.ErrorIs(t, err, dataset.ErrNoData)
}

func TestKNNPredict(t *testing.T) {
	set := newKNNTrainSet()
	knn := NewKNN(nil)
	require.NoError(t, knn.Fit(context.Background(), set))

	// u3 rated only "a", and sim(a, b) = 1, so the weighted mean is u3's
	// rating of "a".
	u3 := set.UserIndex.ToDenseId("u3")
	b := set.BookIndex.ToDenseId("b")
	prediction, err := knn.Predict(u3, b)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, prediction, 1e-6)

	// "c" has no neighbor among u3's rated books
	c := set.BookIndex.ToDenseId("c")
	_, err = knn.Predict(u3, c)
	assert.ErrorIs(t, err, ErrImpossible)

	// out of range indices
	_, err = knn.Predict(100, b)
	assert.ErrorIs(t, err, ErrImpossible)
	_, err = knn.Predict(u3, 100)
	assert.ErrorIs(t, err, ErrImpossible)
}

func TestKNNNeighbors(t *testing.T) {
	set := newKNNTrainSet()
	knn := NewKNN(nil)
	require.NoError(t, knn.Fit(context.Background(), set))

	a := set.BookIndex.ToDenseId("a")
	b := set.BookIndex.ToDenseId("b")
	neighbors, err := knn.Neighbors(a, 10)
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, b, neighbors[0].Index)
	assert.InDelta(t, 1.0, neighbors[0].Similarity, 1e-6)

	// "c" overlaps with nothing
	c := set.BookIndex.ToDenseId("c")
	neighbors, err = knn.Neighbors(c, 10)
	require.NoError(t, err)
	assert.Empty(t, neighbors)

	_, err = knn.Neighbors(100, 10)
	assert.ErrorIs(t, err, ErrImpossible)
}

func TestKNNUserBased(t *testing.T) {
	set := dataset.NewDataset()
	// u1 and u2 rate the shared books identically, u3 rates alone
	set.AddRating("u1", "a", 5)
	set.AddRating("u1", "b", 5)
	set.AddRating("u2", "a", 7)
	set.AddRating("u2", "b", 7)
	set.AddRating("u2", "c", 9)
	set.AddRating("u3", "d", 3)
	knn := NewKNN(Params{UserBased: true})
	require.NoError(t, knn.Fit(context.Background(), set))
	assert.True(t, knn.Invert())

	// u1 inherits u2's rating of "c"
	u1 := set.UserIndex.ToDenseId("u1")
	c := set.BookIndex.ToDenseId("c")
	prediction, err := knn.Predict(u1, c)
	require.NoError(t, err)
	assert.InDelta(t, 9.0, prediction, 1e-6)

	// neighbors are users in this mode
	u2 := set.UserIndex.ToDenseId("u2")
	neighbors, err := knn.Neighbors(u1, 10)
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, u2, neighbors[0].Index)

	// nobody rated "d" except u3
	d := set.BookIndex.ToDenseId("d")
	_, err = knn.Predict(u1, d)
	assert.ErrorIs(t, err, ErrImpossible)
}

func TestKNNNotFitted(t *testing.T) {
	knn := NewKNN(nil)
	_, err := knn.Predict(0, 0)
	assert.ErrorIs(t, err, ErrImpossible)
	_, err = knn.Neighbors(0, 10)
	assert.ErrorIs(t, err, ErrImpossible)
}
