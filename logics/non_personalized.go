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
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"

	"github.com/bookclub-io/bookworm/storage/data"
)

// Popularity ranks the whole catalog by average rating descending, then
// reader count descending, then book id ascending. It is the fallback for
// users without any signal and needs no trained model.
func Popularity(books []data.BookStats, exclude mapset.Set[string], n int) []string {
	ranked := lo.Filter(books, func(book data.BookStats, _ int) bool {
		return exclude == nil || !exclude.Contains(book.BookId)
	})
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].AvgRating != ranked[j].AvgRating {
			return ranked[i].AvgRating > ranked[j].AvgRating
		}
		if ranked[i].ReaderCount != ranked[j].ReaderCount {
			return ranked[i].ReaderCount > ranked[j].ReaderCount
		}
		return ranked[i].BookId < ranked[j].BookId
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return lo.Map(ranked, func(book data.BookStats, _ int) string {
		return book.BookId
	})
}
