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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSparseIdSet(t *testing.T) {
	set := NewSparseIdSet()
	set.Add("a")
	set.Add("b")
	set.Add("a")
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, 0, set.ToDenseId("a"))
	assert.Equal(t, 1, set.ToDenseId("b"))
	assert.Equal(t, NotId, set.ToDenseId("c"))
	assert.Equal(t, "a", set.ToSparseId(0))
	assert.Equal(t, "b", set.ToSparseId(1))
}

func TestSparseVectorSet(t *testing.T) {
	vec := NewSparseVector()
	vec.Set(3, 1.0)
	vec.Set(1, 2.0)
	vec.Set(3, 5.0)
	assert.Equal(t, 2, vec.Len())
	value, exist := vec.Get(3)
	assert.True(t, exist)
	assert.Equal(t, 5.0, value)
	_, exist = vec.Get(2)
	assert.False(t, exist)
}

func TestSparseVectorMean(t *testing.T) {
	vec := NewSparseVector()
	vec.Add(0, 2)
	vec.Add(5, 4)
	vec.Add(9, 6)
	assert.Equal(t, 4.0, vec.Mean())
}

func TestForIntersection(t *testing.T) {
	a := NewSparseVector()
	a.Add(2, 1)
	a.Add(1, 2)
	a.Add(8, 3)
	b := NewSparseVector()
	b.Add(16, 1)
	b.Add(1, 2)
	b.Add(2, 3)
	intersectIndex := make([]int, 0)
	intersectA := make([]float64, 0)
	intersectB := make([]float64, 0)
	a.ForIntersection(b, func(index int, a, b float64) {
		intersectIndex = append(intersectIndex, index)
		intersectA = append(intersectA, a)
		intersectB = append(intersectB, b)
	})
	assert.Equal(t, []int{1, 2}, intersectIndex)
	assert.Equal(t, []float64{2, 1}, intersectA)
	assert.Equal(t, []float64{2, 3}, intersectB)
}

func TestKNNHeap(t *testing.T) {
	knnHeap := NewKNNHeap(3)
	knnHeap.Add(10, 2, 0.2)
	knnHeap.Add(20, 8, 0.8)
	knnHeap.Add(30, 0, 0)
	knnHeap.Add(40, 4, 0.4)
	knnHeap.Add(50, 6, 0.6)
	// zero similarity is ignored, the weakest neighbor is evicted
	assert.Equal(t, 3, knnHeap.Len())
	assert.ElementsMatch(t, []int{20, 40, 50}, knnHeap.Indices)
}

func TestKNNHeapWeightedMean(t *testing.T) {
	knnHeap := NewKNNHeap(10)
	assert.Zero(t, knnHeap.WeightedMean())
	knnHeap.Add(1, 4, 0.5)
	knnHeap.Add(2, 8, 1.0)
	assert.InDelta(t, (4*0.5+8*1.0)/1.5, knnHeap.WeightedMean(), 1e-6)
}
