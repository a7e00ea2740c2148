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
	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/bookclub-io/bookworm/base"
	"github.com/bookclub-io/bookworm/base/log"
	"github.com/bookclub-io/bookworm/dataset"
	"github.com/bookclub-io/bookworm/model"
)

// CollaborativeCandidates builds the candidate score map for a user from a
// fitted model. For book neighborhoods, each of the user's k top rated books
// seeds its neighbors with score += similarity * rating / MaxRating. For
// user-based models the k most similar users seed their rating sets the same
// way. Books the user already rated never become candidates. Seeds the model
// cannot score are skipped and logged, they never fail the request. A user
// unknown to the training matrix yields an empty map.
func CollaborativeCandidates(set *dataset.Dataset, collaborative model.Collaborative, userId string, k int) (map[string]float64, error) {
	candidates := make(map[string]float64)
	userIndex := set.UserIndex.ToDenseId(userId)
	if userIndex == base.NotId {
		return candidates, nil
	}
	rated := make(map[int]struct{})
	set.UserRatings[userIndex].ForEach(func(_, bookIndex int, _ float64) {
		rated[bookIndex] = struct{}{}
	})
	scores := make(map[int]float64)
	if collaborative.Invert() {
		neighbors, err := collaborative.Neighbors(userIndex, k)
		if err != nil {
			if errors.Is(err, model.ErrImpossible) {
				log.Logger().Debug("no similar users", zap.String("user_id", userId))
				return candidates, nil
			}
			return nil, errors.Trace(err)
		}
		for _, neighbor := range neighbors {
			similarity := neighbor.Similarity
			set.UserRatings[neighbor.Index].ForEach(func(_, bookIndex int, rating float64) {
				if _, exist := rated[bookIndex]; exist {
					return
				}
				scores[bookIndex] += similarity * rating / dataset.MaxRating
			})
		}
	} else {
		for _, seed := range set.TopRated(userIndex, k) {
			neighbors, err := collaborative.Neighbors(seed.BookIndex, k)
			if err != nil {
				if errors.Is(err, model.ErrImpossible) {
					log.Logger().Debug("skip unscorable seed",
						zap.String("user_id", userId),
						zap.String("book_id", set.BookIndex.ToSparseId(seed.BookIndex)))
					continue
				}
				return nil, errors.Trace(err)
			}
			for _, neighbor := range neighbors {
				if _, exist := rated[neighbor.Index]; exist {
					continue
				}
				scores[neighbor.Index] += neighbor.Similarity * seed.Rating / dataset.MaxRating
			}
		}
	}
	for bookIndex, score := range scores {
		candidates[set.BookIndex.ToSparseId(bookIndex)] = score
	}
	return candidates, nil
}
