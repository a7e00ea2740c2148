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

// Package model implements the collaborative filtering models trained on the
// rating matrix.
package model

import (
	"context"

	"github.com/juju/errors"

	"github.com/bookclub-io/bookworm/dataset"
)

// ErrImpossible is returned by Predict and Neighbors when the model cannot
// produce an estimate, e.g. the id was not seen during training or no
// neighbor overlaps. Callers skip the candidate instead of failing.
var ErrImpossible = errors.New("prediction impossible")

// Neighbor is a scored neighbor of a book, or of a user for user-based
// models.
type Neighbor struct {
	Index      int
	Similarity float64
}

// Collaborative is a model trained on the rating matrix. Fit must be called
// before Predict or Neighbors. Models are immutable after Fit, so a fitted
// model is safe for concurrent readers.
type Collaborative interface {
	// Fit trains the model on a dataset. Training on an empty dataset
	// returns dataset.ErrNoData.
	Fit(ctx context.Context, set *dataset.Dataset) error
	// Predict estimates the rating a user would give to a book, both given
	// as dense indices of the training dataset.
	Predict(userIndex, bookIndex int) (float64, error)
	// Neighbors returns up to k nearest neighbors of a book, most similar
	// first, omitting zero similarities. For user-based models the index
	// and the neighbors are users instead.
	Neighbors(index, k int) ([]Neighbor, error)
	// Invert reports whether Neighbors works on users instead of books.
	Invert() bool
}

// BaseModel holds common fields of collaborative models.
type BaseModel struct {
	Params Params
	fitted bool
	train  *dataset.Dataset
}

// SetParams sets hyperparameters.
func (model *BaseModel) SetParams(params Params) {
	model.Params = params
}

// GetParams returns hyperparameters.
func (model *BaseModel) GetParams() Params {
	return model.Params
}

func (model *BaseModel) markFit(set *dataset.Dataset) {
	model.fitted = true
	model.train = set
}
