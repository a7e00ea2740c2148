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

package recommend

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/jellydator/ttlcache/v3"
	"github.com/juju/errors"

	"github.com/bookclub-io/bookworm/base"
	"github.com/bookclub-io/bookworm/config"
	"github.com/bookclub-io/bookworm/logics"
	"github.com/bookclub-io/bookworm/model"
	"github.com/bookclub-io/bookworm/storage/data"
)

// Recommender serves ranked book lists for users, books and clubs. Strategy
// selection is a cold-start ladder: collaborative filtering for users with
// ratings, genre similarity for users with a reading list, the global
// popularity ranking for everyone else. Safe for concurrent use.
type Recommender struct {
	db      data.Database
	cache   *ModelCache
	cfg     *config.Config
	results *ttlcache.Cache[string, []string]
}

// NewRecommender creates a recommender on top of a model cache. Served lists
// are memoized per snapshot generation until they expire.
func NewRecommender(db data.Database, cache *ModelCache, cfg *config.Config) *Recommender {
	results := ttlcache.New[string, []string](
		ttlcache.WithTTL[string, []string](cfg.Recommend.CacheTTL),
		ttlcache.WithCapacity[string, []string](uint64(cfg.Recommend.CacheSize)),
	)
	go results.Start()
	return &Recommender{
		db:      db,
		cache:   cache,
		cfg:     cfg,
		results: results,
	}
}

// Close stops the expiration loop of the result cache.
func (r *Recommender) Close() {
	r.results.Stop()
}

// NotifyWrite records a rating-affecting write, possibly scheduling a
// background retrain.
func (r *Recommender) NotifyWrite(ctx context.Context) {
	r.cache.NotifyWrite(ctx)
}

// RecommendForUser returns up to n books for a user. An unknown user is an
// error, a user without any signal still gets the popularity ranking.
func (r *Recommender) RecommendForUser(ctx context.Context, userId string, n int) ([]string, error) {
	if n <= 0 {
		n = r.cfg.Recommend.DefaultN
	}
	if _, err := r.db.GetUser(ctx, userId); err != nil {
		return nil, errors.Trace(err)
	}
	snapshot, err := r.cache.Snapshot(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	key := fmt.Sprintf("user/%s/%d/%d", userId, n, snapshot.Generation)
	if item := r.results.Get(key); item != nil {
		return item.Value(), nil
	}
	ranked, err := r.recommendForUser(ctx, snapshot, userId, n)
	if err != nil {
		return nil, errors.Trace(err)
	}
	r.results.Set(key, ranked, ttlcache.DefaultTTL)
	return ranked, nil
}

func (r *Recommender) recommendForUser(ctx context.Context, snapshot *Snapshot, userId string, n int) ([]string, error) {
	ownedBooks, err := r.db.GetUserBooks(ctx, userId)
	if err != nil {
		return nil, errors.Trace(err)
	}
	owned := mapset.NewSet[string](ownedBooks...)
	// collaborative filtering for users with ratings
	if snapshot.Model != nil && snapshot.Dataset.UserIndex.ToDenseId(userId) != base.NotId {
		candidates, err := logics.CollaborativeCandidates(snapshot.Dataset, snapshot.Model, userId, r.cfg.Recommend.NeighborK)
		if err != nil {
			return nil, errors.Trace(err)
		}
		return logics.Rank(candidates, owned, n), nil
	}
	// genre similarity for users with a reading list
	if len(ownedBooks) > 0 {
		return snapshot.Genres.RecommendByHistory(ownedBooks, owned, n), nil
	}
	// no signal at all
	return logics.Popularity(snapshot.Popularity, owned, n), nil
}

// RecommendForBook returns up to n books similar to a seed book by genre,
// skipping books the user already has. Unknown users and books are errors.
func (r *Recommender) RecommendForBook(ctx context.Context, userId, bookId string, n int) ([]string, error) {
	if n <= 0 {
		n = r.cfg.Recommend.DefaultN
	}
	if _, err := r.db.GetUser(ctx, userId); err != nil {
		return nil, errors.Trace(err)
	}
	if _, err := r.db.GetBook(ctx, bookId); err != nil {
		return nil, errors.Trace(err)
	}
	snapshot, err := r.cache.Snapshot(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	key := fmt.Sprintf("book/%s/%s/%d/%d", userId, bookId, n, snapshot.Generation)
	if item := r.results.Get(key); item != nil {
		return item.Value(), nil
	}
	ownedBooks, err := r.db.GetUserBooks(ctx, userId)
	if err != nil {
		return nil, errors.Trace(err)
	}
	ranked, err := snapshot.Genres.RecommendForBook(bookId, mapset.NewSet[string](ownedBooks...), n)
	if err != nil {
		return nil, errors.Trace(err)
	}
	r.results.Set(key, ranked, ttlcache.DefaultTTL)
	return ranked, nil
}

// RecommendForClub merges the personal recommendations of every club member
// into a club-level ranking. Books already on the club's shelf are dropped.
// The merged pool is shuffled before counting so the member order carries no
// bias, with a seed fixed by the snapshot generation and the club id to keep
// the ranking deterministic per trained snapshot.
func (r *Recommender) RecommendForClub(ctx context.Context, clubId string, n int) ([]string, error) {
	if n <= 0 {
		n = r.cfg.Recommend.DefaultN
	}
	if _, err := r.db.GetClub(ctx, clubId); err != nil {
		return nil, errors.Trace(err)
	}
	snapshot, err := r.cache.Snapshot(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	key := fmt.Sprintf("club/%s/%d/%d", clubId, n, snapshot.Generation)
	if item := r.results.Get(key); item != nil {
		return item.Value(), nil
	}
	members, err := r.db.GetClubMembers(ctx, clubId)
	if err != nil {
		return nil, errors.Trace(err)
	}
	clubBooks, err := r.db.GetClubBooks(ctx, clubId)
	if err != nil {
		return nil, errors.Trace(err)
	}
	shelf := mapset.NewSet[string](clubBooks...)
	pool := make([]string, 0)
	for _, member := range members {
		ranked, err := r.recommendForUser(ctx, snapshot, member, n)
		if err != nil {
			return nil, errors.Trace(err)
		}
		for _, bookId := range ranked {
			if !shelf.Contains(bookId) {
				pool = append(pool, bookId)
			}
		}
	}
	ranked := rankByFrequency(pool, clubSeed(snapshot.Generation, clubId), n)
	r.results.Set(key, ranked, ttlcache.DefaultTTL)
	return ranked, nil
}

// EstimateRating predicts the rating a user would give to a book with the
// collaborative model. model.ErrImpossible is returned when the model has no
// signal for the pair.
func (r *Recommender) EstimateRating(ctx context.Context, userId, bookId string) (float64, error) {
	snapshot, err := r.cache.Snapshot(ctx)
	if err != nil {
		return 0, errors.Trace(err)
	}
	if snapshot.Model == nil {
		return 0, errors.Trace(model.ErrImpossible)
	}
	userIndex := snapshot.Dataset.UserIndex.ToDenseId(userId)
	bookIndex := snapshot.Dataset.BookIndex.ToDenseId(bookId)
	return snapshot.Model.Predict(userIndex, bookIndex)
}

func clubSeed(generation int64, clubId string) int64 {
	hash := fnv.New64a()
	_, _ = hash.Write([]byte(clubId))
	return generation + int64(hash.Sum64())
}

// rankByFrequency orders a pool of book ids by how often they occur. The
// pool is shuffled first so ties resolve by shuffle position instead of
// member order.
func rankByFrequency(pool []string, seed int64, n int) []string {
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	counts := make(map[string]int)
	position := make(map[string]int)
	order := make([]string, 0, len(pool))
	for _, bookId := range pool {
		if _, seen := counts[bookId]; !seen {
			position[bookId] = len(order)
			order = append(order, bookId)
		}
		counts[bookId]++
	}
	sort.Slice(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return position[order[i]] < position[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}
