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
	"runtime"
	"sort"

	"github.com/juju/errors"

	"github.com/bookclub-io/bookworm/base"
	"github.com/bookclub-io/bookworm/base/heap"
	"github.com/bookclub-io/bookworm/base/parallel"
	"github.com/bookclub-io/bookworm/dataset"
)

// KNN is a neighborhood collaborative filtering model. It precomputes the
// pairwise similarity matrix over books, or over users when UserBased is set,
// and predicts ratings as similarity weighted averages.
type KNN struct {
	BaseModel
	// hyperparameters
	k          int
	minK       int
	userBased  bool
	similarity base.FuncSimilarity
	// matrix[i] holds the k strongest similarities of row i against other
	// rows. Pairs without common raters are absent, equivalent to
	// similarity zero.
	matrix []*base.SparseVector
}

// NewKNN creates a KNN model. Default hyperparameters:
//
//	K          - 40
//	MinK       - 1
//	UserBased  - false
//	Similarity - cosine
func NewKNN(params Params) *KNN {
	knn := new(KNN)
	knn.SetParams(params)
	knn.k = params.GetInt(K, 40)
	knn.minK = params.GetInt(MinK, 1)
	knn.userBased = params.GetBool(UserBased, false)
	switch params.GetString(Similarity, SimilarityCosine) {
	case SimilarityMSD:
		knn.similarity = base.MSDSimilarity
	case SimilarityPearson:
		knn.similarity = base.PearsonSimilarity
	default:
		knn.similarity = base.CosineSimilarity
	}
	return knn
}

// Invert reports whether the similarity matrix is over users.
func (knn *KNN) Invert() bool {
	return knn.userBased
}

// Fit computes the similarity matrix. Similarity of a pair is evaluated on
// the ratings of their common raters only.
func (knn *KNN) Fit(ctx context.Context, set *dataset.Dataset) error {
	if set.Count() == 0 {
		return errors.Trace(dataset.ErrNoData)
	}
	rows := set.BookRatings
	if knn.userBased {
		rows = set.UserRatings
	}
	for _, row := range rows {
		row.SortIndex()
	}
	knn.matrix = base.NewDenseSparseMatrix(len(rows))
	err := parallel.Parallel(len(rows), runtime.NumCPU(), func(_, i int) error {
		if err := ctx.Err(); err != nil {
			return errors.Trace(err)
		}
		// keep the k strongest neighbors per row
		filter := heap.NewTopKFilter[int, float64](knn.k)
		for j := 0; j < len(rows); j++ {
			if i == j {
				continue
			}
			if s := knn.similarity(rows[i], rows[j]); s != 0 {
				filter.Push(j, s)
			}
		}
		indices, similarities := filter.PopAll()
		for j, other := range indices {
			knn.matrix[i].Add(other, similarities[j])
		}
		return nil
	})
	if err != nil {
		return errors.Trace(err)
	}
	knn.markFit(set)
	return nil
}

// Predict estimates a rating as the similarity weighted average over the k
// nearest rated neighbors. Fewer than MinK usable neighbors, an unknown user
// or an unknown book yield ErrImpossible.
func (knn *KNN) Predict(userIndex, bookIndex int) (float64, error) {
	if !knn.fitted {
		return 0, errors.Trace(ErrImpossible)
	}
	if userIndex < 0 || userIndex >= knn.train.UserCount() ||
		bookIndex < 0 || bookIndex >= knn.train.BookCount() {
		return 0, errors.Trace(ErrImpossible)
	}
	// collect rated neighbors
	target, ratings := bookIndex, knn.train.UserRatings[userIndex]
	if knn.userBased {
		target, ratings = userIndex, knn.train.BookRatings[bookIndex]
	}
	knnHeap := base.NewKNNHeap(knn.k)
	ratings.ForEach(func(_, index int, value float64) {
		if similarity, exist := knn.matrix[target].Get(index); exist {
			knnHeap.Add(index, value, similarity)
		}
	})
	if knnHeap.Len() < knn.minK {
		return 0, errors.Trace(ErrImpossible)
	}
	return knnHeap.WeightedMean(), nil
}

// Neighbors returns the k most similar rows of the similarity matrix.
func (knn *KNN) Neighbors(index, k int) ([]Neighbor, error) {
	if !knn.fitted {
		return nil, errors.Trace(ErrImpossible)
	}
	if index < 0 || index >= len(knn.matrix) {
		return nil, errors.Trace(ErrImpossible)
	}
	knnHeap := base.NewKNNHeap(k)
	knn.matrix[index].ForEach(func(_, other int, similarity float64) {
		knnHeap.Add(other, 0, similarity)
	})
	neighbors := make([]Neighbor, 0, knnHeap.Len())
	for i, other := range knnHeap.Indices {
		neighbors = append(neighbors, Neighbor{Index: other, Similarity: knnHeap.Similarities[i]})
	}
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Similarity != neighbors[j].Similarity {
			return neighbors[i].Similarity > neighbors[j].Similarity
		}
		return neighbors[i].Index < neighbors[j].Index
	})
	return neighbors, nil
}
