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

package base

import (
	"math"
)

// FuncSimilarity computes the similarity between a pair of sparse rating vectors.
// The similarity is computed over the intersection of rated indices only. Pairs
// with no overlap score 0, never NaN.
type FuncSimilarity func(a, b *SparseVector) float64

// CosineSimilarity computes the cosine similarity between a pair of vectors.
func CosineSimilarity(a, b *SparseVector) float64 {
	m, n, l := .0, .0, .0
	a.ForIntersection(b, func(_ int, a, b float64) {
		m += a * a
		n += b * b
		l += a * b
	})
	if m == 0 || n == 0 {
		return 0
	}
	return l / (math.Sqrt(m) * math.Sqrt(n))
}

// MSDSimilarity computes the Mean Squared Difference similarity between a pair of vectors.
func MSDSimilarity(a, b *SparseVector) float64 {
	count, sum := 0.0, 0.0
	a.ForIntersection(b, func(_ int, a, b float64) {
		sum += (a - b) * (a - b)
		count += 1
	})
	if count == 0 {
		return 0
	}
	return 1.0 / (sum/count + 1)
}

// PearsonSimilarity computes the Pearson correlation coefficient between a pair of vectors.
func PearsonSimilarity(a, b *SparseVector) float64 {
	// Mean of a
	meanA := a.Mean()
	// Mean of b
	meanB := b.Mean()
	// Mean-centered cosine
	m, n, l := .0, .0, .0
	a.ForIntersection(b, func(_ int, a, b float64) {
		ratingA := a - meanA
		ratingB := b - meanB
		m += ratingA * ratingA
		n += ratingB * ratingB
		l += ratingA * ratingB
	})
	if m == 0 || n == 0 {
		return 0
	}
	return l / (math.Sqrt(m) * math.Sqrt(n))
}
