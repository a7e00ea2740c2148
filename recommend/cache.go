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

// Package recommend exposes the recommendation entry points and owns the
// shared trained model state.
package recommend

import (
	"context"
	"sync"

	"github.com/juju/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/bookclub-io/bookworm/base/log"
	"github.com/bookclub-io/bookworm/config"
	"github.com/bookclub-io/bookworm/dataset"
	"github.com/bookclub-io/bookworm/logics"
	"github.com/bookclub-io/bookworm/model"
	"github.com/bookclub-io/bookworm/storage/data"
)

// Snapshot is one immutable generation of trained state. All fields were
// built from the same load of the rating store, so readers never mix a
// rating matrix with a model of another generation. Model is nil when the
// rating store was empty at training time.
type Snapshot struct {
	Generation int64
	Dataset    *dataset.Dataset
	Model      model.Collaborative
	Genres     *logics.GenreIndex
	Popularity []data.BookStats
}

// ModelCache owns the current snapshot. It trains lazily on first use,
// retrains asynchronously once enough writes accumulate and swaps snapshots
// atomically, so readers block on training only once, at cold start.
type ModelCache struct {
	db  data.Database
	cfg *config.Config

	mu       sync.RWMutex
	snapshot *Snapshot

	generation *atomic.Int64
	writes     *atomic.Int64
	training   *atomic.Bool
}

// NewModelCache creates an empty cache. Nothing is trained until the first
// Snapshot call.
func NewModelCache(db data.Database, cfg *config.Config) *ModelCache {
	return &ModelCache{
		db:         db,
		cfg:        cfg,
		generation: atomic.NewInt64(0),
		writes:     atomic.NewInt64(0),
		training:   atomic.NewBool(false),
	}
}

// Snapshot returns the current trained state. The first call trains
// synchronously; later calls return the latest snapshot without blocking on
// any retrain in flight.
func (cache *ModelCache) Snapshot(ctx context.Context) (*Snapshot, error) {
	cache.mu.RLock()
	snapshot := cache.snapshot
	cache.mu.RUnlock()
	if snapshot != nil {
		return snapshot, nil
	}
	// cold start
	cache.mu.Lock()
	defer cache.mu.Unlock()
	if cache.snapshot != nil {
		return cache.snapshot, nil
	}
	snapshot, err := cache.train(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	cache.snapshot = snapshot
	return snapshot, nil
}

// Refresh retrains synchronously and swaps the snapshot. Concurrent trains
// may finish out of order, so the swap only moves the generation forward.
func (cache *ModelCache) Refresh(ctx context.Context) error {
	snapshot, err := cache.train(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	cache.mu.Lock()
	if cache.snapshot == nil || cache.snapshot.Generation < snapshot.Generation {
		cache.snapshot = snapshot
	}
	cache.mu.Unlock()
	return nil
}

// NotifyWrite records one rating-affecting write. Crossing the retrain
// threshold starts a background retrain, at most one at a time. Readers keep
// serving the previous snapshot until the new one is swapped in.
func (cache *ModelCache) NotifyWrite(ctx context.Context) {
	if cache.writes.Inc() < int64(cache.threshold()) {
		return
	}
	if !cache.training.CompareAndSwap(false, true) {
		return
	}
	pending := cache.writes.Swap(0)
	// the retrain must outlive the request that triggered it
	ctx = context.WithoutCancel(ctx)
	go func() {
		defer cache.training.Store(false)
		if err := cache.Refresh(ctx); err != nil {
			log.Logger().Error("background retrain failed", zap.Error(err))
			cache.writes.Add(pending)
		}
	}()
}

// threshold returns the number of writes that triggers a retrain. When not
// configured it is one tenth of the known users, at least one.
func (cache *ModelCache) threshold() int {
	if cache.cfg.Recommend.RetrainThreshold > 0 {
		return cache.cfg.Recommend.RetrainThreshold
	}
	cache.mu.RLock()
	snapshot := cache.snapshot
	cache.mu.RUnlock()
	if snapshot == nil {
		return 1
	}
	if threshold := snapshot.Dataset.UserCount() / 10; threshold > 1 {
		return threshold
	}
	return 1
}

// train loads the rating store and fits a fresh snapshot. An empty rating
// store yields a snapshot without a collaborative model.
func (cache *ModelCache) train(ctx context.Context) (*Snapshot, error) {
	set, err := dataset.LoadDataset(ctx, cache.db)
	if err != nil {
		return nil, errors.Trace(err)
	}
	books, err := cache.db.ListBooks(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	snapshot := &Snapshot{
		Generation: cache.generation.Inc(),
		Dataset:    set,
		Genres:     logics.NewGenreIndex(books),
		Popularity: books,
	}
	var collaborative model.Collaborative
	switch cache.cfg.Recommend.Model {
	case "svd":
		collaborative = model.NewSVD(cache.cfg.Recommend.ModelParams())
	default:
		collaborative = model.NewKNN(cache.cfg.Recommend.ModelParams())
	}
	if err = collaborative.Fit(ctx, set); err != nil {
		if !errors.Is(err, dataset.ErrNoData) {
			return nil, errors.Trace(err)
		}
		log.Logger().Info("rating store is empty, collaborative filtering disabled",
			zap.Int64("generation", snapshot.Generation))
	} else {
		snapshot.Model = collaborative
	}
	log.Logger().Info("trained snapshot",
		zap.Int64("generation", snapshot.Generation),
		zap.Int("n_users", set.UserCount()),
		zap.Int("n_books", set.BookCount()),
		zap.Int("n_ratings", set.Count()))
	return snapshot, nil
}
