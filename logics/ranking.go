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

// Package logics implements the recommendation strategies: collaborative
// candidate generation, content similarity over genres, popularity ranking
// and the candidate aggregator behind them.
package logics

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// Scored is a candidate book with its accumulated score.
type Scored struct {
	Id    string
	Score float64
}

// Rank turns a candidate score map into an ordered recommendation list. It
// drops excluded ids, sorts by score descending with ties broken by id
// ascending, and truncates to n. Pure function.
func Rank(candidates map[string]float64, exclude mapset.Set[string], n int) []string {
	scored := make([]Scored, 0, len(candidates))
	for id, score := range candidates {
		if exclude != nil && exclude.Contains(id) {
			continue
		}
		scored = append(scored, Scored{Id: id, Score: score})
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Id < scored[j].Id
	})
	if len(scored) > n {
		scored = scored[:n]
	}
	ranked := make([]string, len(scored))
	for i, candidate := range scored {
		ranked[i] = candidate.Id
	}
	return ranked
}
