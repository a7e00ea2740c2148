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

	"github.com/bookclub-io/bookworm/storage/data"
)

func TestPopularity(t *testing.T) {
	books := []data.BookStats{
		{BookId: "a", AvgRating: 6, ReaderCount: 3},
		{BookId: "b", AvgRating: 9, ReaderCount: 1},
		{BookId: "c", AvgRating: 6, ReaderCount: 8},
		{BookId: "d", AvgRating: 6, ReaderCount: 3},
	}
	// average rating first, reader count next, id last
	assert.Equal(t, []string{"b", "c", "a", "d"}, Popularity(books, nil, 10))
	assert.Equal(t, []string{"b", "c"}, Popularity(books, nil, 2))
	assert.Equal(t, []string{"c", "a", "d"}, Popularity(books, mapset.NewSet("b"), 10))
	assert.Empty(t, Popularity(nil, nil, 10))
}
