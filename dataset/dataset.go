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

// Package dataset builds the in-memory sparse rating matrix consumed by the
// recommendation models.
package dataset

import (
	"context"
	"sort"

	"github.com/juju/errors"

	"github.com/bookclub-io/bookworm/base"
	"github.com/bookclub-io/bookworm/storage/data"
)

// MaxRating is the upper bound of the rating scale. Out-of-range values are
// clamped into [0, MaxRating] at load time.
const MaxRating = 10.0

// ErrNoData is returned when a model is trained on an empty rating matrix.
// Callers fall back to the popularity ranking on this error.
var ErrNoData = errors.New("no rating data")

// Dataset is the sparse user×book rating matrix plus the bidirectional maps
// between raw ids and dense indices. Dense indices are assigned in first-seen
// order and are only valid for the lifetime of this dataset: a reload assigns
// fresh indices.
type Dataset struct {
	UserIndex   *base.SparseIdSet
	BookIndex   *base.SparseIdSet
	UserRatings []*base.SparseVector // dense user id -> (dense book id, rating)
	BookRatings []*base.SparseVector // dense book id -> (dense user id, rating)
	count       int
}

// NewDataset creates an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{
		UserIndex:   base.NewSparseIdSet(),
		BookIndex:   base.NewSparseIdSet(),
		UserRatings: make([]*base.SparseVector, 0),
		BookRatings: make([]*base.SparseVector, 0),
	}
}

// UserCount returns the number of distinct users in the matrix.
func (d *Dataset) UserCount() int {
	return d.UserIndex.Len()
}

// BookCount returns the number of distinct books in the matrix.
func (d *Dataset) BookCount() int {
	return d.BookIndex.Len()
}

// Count returns the number of ratings in the matrix.
func (d *Dataset) Count() int {
	return d.count
}

// AddRating inserts a rating into the matrix. The value is clamped into
// [0, MaxRating]. Inserting the same (user, book) pair again replaces the
// previous value, so the matrix holds at most one rating per pair.
func (d *Dataset) AddRating(userId, bookId string, value float64) {
	if value < 0 {
		value = 0
	} else if value > MaxRating {
		value = MaxRating
	}
	d.UserIndex.Add(userId)
	d.BookIndex.Add(bookId)
	userIndex := d.UserIndex.ToDenseId(userId)
	bookIndex := d.BookIndex.ToDenseId(bookId)
	for len(d.UserRatings) <= userIndex {
		d.UserRatings = append(d.UserRatings, base.NewSparseVector())
	}
	for len(d.BookRatings) <= bookIndex {
		d.BookRatings = append(d.BookRatings, base.NewSparseVector())
	}
	if _, exist := d.UserRatings[userIndex].Get(bookIndex); !exist {
		d.count++
	}
	d.UserRatings[userIndex].Set(bookIndex, value)
	d.BookRatings[bookIndex].Set(userIndex, value)
}

// GetRating returns the rating a user gave to a book, or false if there is none.
func (d *Dataset) GetRating(userId, bookId string) (float64, bool) {
	userIndex := d.UserIndex.ToDenseId(userId)
	bookIndex := d.BookIndex.ToDenseId(bookId)
	if userIndex == base.NotId || bookIndex == base.NotId {
		return 0, false
	}
	return d.UserRatings[userIndex].Get(bookIndex)
}

// RatedBook is one entry of a user's rating history.
type RatedBook struct {
	BookIndex int
	Rating    float64
}

// TopRated returns the k highest-rated books of a user as neighbor seeds.
// Ties are broken by dense book index, i.e. first-seen order, which keeps the
// selection stable across calls.
func (d *Dataset) TopRated(userIndex, k int) []RatedBook {
	if userIndex < 0 || userIndex >= len(d.UserRatings) {
		return nil
	}
	rated := make([]RatedBook, 0, d.UserRatings[userIndex].Len())
	d.UserRatings[userIndex].ForEach(func(_, index int, value float64) {
		rated = append(rated, RatedBook{BookIndex: index, Rating: value})
	})
	sort.Slice(rated, func(i, j int) bool {
		if rated[i].Rating != rated[j].Rating {
			return rated[i].Rating > rated[j].Rating
		}
		return rated[i].BookIndex < rated[j].BookIndex
	})
	if len(rated) > k {
		rated = rated[:k]
	}
	return rated
}

// LoadDataset reads all ratings from the store and builds a fresh rating
// matrix. An empty store yields an empty matrix; training on it fails with
// ErrNoData downstream.
func LoadDataset(ctx context.Context, db data.Database) (*Dataset, error) {
	ratings, err := db.ListRatings(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	set := NewDataset()
	for _, rating := range ratings {
		set.AddRating(rating.UserId, rating.BookId, rating.Value)
	}
	return set, nil
}
