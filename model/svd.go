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

package model

import (
	"context"
	"sort"

	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/bookclub-io/bookworm/base"
	"github.com/bookclub-io/bookworm/base/floats"
	"github.com/bookclub-io/bookworm/base/log"
	"github.com/bookclub-io/bookworm/dataset"
)

// SVD is a matrix factorization model fitted by stochastic gradient descent:
//
//	\hat{r}_{ui} = \mu + b_u + b_i + q_i^T p_u
//
// Training is deterministic for a fixed RandomState.
type SVD struct {
	BaseModel
	UserFactor [][]float32
	BookFactor [][]float32
	UserBias   []float32
	BookBias   []float32
	GlobalMean float32
	// hyperparameters
	nFactors   int
	nEpochs    int
	lr         float32
	reg        float32
	useBias    bool
	initMean   float32
	initStdDev float32
	seed       int64
}

// NewSVD creates a SVD model. Default hyperparameters:
//
//	NFactors    - 16
//	NEpochs     - 50
//	Lr          - 0.005
//	Reg         - 0.02
//	UseBias     - true
//	InitMean    - 0
//	InitStdDev  - 0.1
//	RandomState - 0
func NewSVD(params Params) *SVD {
	svd := new(SVD)
	svd.SetParams(params)
	svd.nFactors = params.GetInt(NFactors, 16)
	svd.nEpochs = params.GetInt(NEpochs, 50)
	svd.lr = float32(params.GetFloat64(Lr, 0.005))
	svd.reg = float32(params.GetFloat64(Reg, 0.02))
	svd.useBias = params.GetBool(UseBias, true)
	svd.initMean = float32(params.GetFloat64(InitMean, 0))
	svd.initStdDev = float32(params.GetFloat64(InitStdDev, 0.1))
	svd.seed = params.GetInt64(RandomState, 0)
	return svd
}

// Invert always reports false, the factor space is over books.
func (svd *SVD) Invert() bool {
	return false
}

type svdSample struct {
	userIndex int
	bookIndex int
	rating    float64
}

// Fit trains the factors and biases by SGD over the observed ratings.
func (svd *SVD) Fit(ctx context.Context, set *dataset.Dataset) error {
	if set.Count() == 0 {
		return errors.Trace(dataset.ErrNoData)
	}
	rng := base.NewRandomGenerator(svd.seed)
	svd.UserFactor = rng.NormalMatrix(set.UserCount(), svd.nFactors, svd.initMean, svd.initStdDev)
	svd.BookFactor = rng.NormalMatrix(set.BookCount(), svd.nFactors, svd.initMean, svd.initStdDev)
	svd.UserBias = make([]float32, set.UserCount())
	svd.BookBias = make([]float32, set.BookCount())

	samples := make([]svdSample, 0, set.Count())
	sum := 0.0
	for userIndex, ratings := range set.UserRatings {
		ratings.ForEach(func(_, bookIndex int, value float64) {
			samples = append(samples, svdSample{userIndex, bookIndex, value})
			sum += value
		})
	}
	svd.GlobalMean = float32(sum / float64(len(samples)))

	grad := make([]float32, svd.nFactors)
	step := make([]float32, svd.nFactors)
	for epoch := 0; epoch < svd.nEpochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return errors.Trace(err)
		}
		cost := float32(0)
		for _, i := range rng.Perm(len(samples)) {
			sample := samples[i]
			userFactor := svd.UserFactor[sample.userIndex]
			bookFactor := svd.BookFactor[sample.bookIndex]
			prediction := svd.GlobalMean + svd.UserBias[sample.userIndex] +
				svd.BookBias[sample.bookIndex] + floats.Dot(userFactor, bookFactor)
			diff := float32(sample.rating) - prediction
			cost += diff * diff
			if svd.useBias {
				svd.UserBias[sample.userIndex] += svd.lr * (diff - svd.reg*svd.UserBias[sample.userIndex])
				svd.BookBias[sample.bookIndex] += svd.lr * (diff - svd.reg*svd.BookBias[sample.bookIndex])
			}
			// user factor update
			floats.MulConstTo(bookFactor, diff, grad)
			floats.MulConstTo(userFactor, svd.reg, step)
			floats.Sub(grad, step)
			floats.MulConstAdd(grad, svd.lr, userFactor)
			// book factor update
			floats.MulConstTo(userFactor, diff, grad)
			floats.MulConstTo(bookFactor, svd.reg, step)
			floats.Sub(grad, step)
			floats.MulConstAdd(grad, svd.lr, bookFactor)
		}
		if epoch == svd.nEpochs-1 {
			log.Logger().Debug("fit svd",
				zap.Int("n_epochs", svd.nEpochs),
				zap.Float32("cost", cost))
		}
	}
	svd.markFit(set)
	return nil
}

// Predict estimates a rating from the learned factors. Estimates are clamped
// into the rating scale. Unknown indices yield ErrImpossible.
func (svd *SVD) Predict(userIndex, bookIndex int) (float64, error) {
	if !svd.fitted {
		return 0, errors.Trace(ErrImpossible)
	}
	if userIndex < 0 || userIndex >= len(svd.UserFactor) ||
		bookIndex < 0 || bookIndex >= len(svd.BookFactor) {
		return 0, errors.Trace(ErrImpossible)
	}
	prediction := svd.GlobalMean + svd.UserBias[userIndex] + svd.BookBias[bookIndex] +
		floats.Dot(svd.UserFactor[userIndex], svd.BookFactor[bookIndex])
	estimate := float64(prediction)
	if estimate < 0 {
		estimate = 0
	} else if estimate > dataset.MaxRating {
		estimate = dataset.MaxRating
	}
	return estimate, nil
}

// Neighbors returns the k books closest to a book by cosine over the learned
// factor vectors.
func (svd *SVD) Neighbors(index, k int) ([]Neighbor, error) {
	if !svd.fitted {
		return nil, errors.Trace(ErrImpossible)
	}
	if index < 0 || index >= len(svd.BookFactor) {
		return nil, errors.Trace(ErrImpossible)
	}
	target := svd.BookFactor[index]
	targetNorm := floats.Norm(target)
	neighbors := make([]Neighbor, 0, len(svd.BookFactor)-1)
	for other, factor := range svd.BookFactor {
		if other == index {
			continue
		}
		norm := floats.Norm(factor)
		if targetNorm == 0 || norm == 0 {
			continue
		}
		similarity := float64(floats.Dot(target, factor) / targetNorm / norm)
		if similarity != 0 {
			neighbors = append(neighbors, Neighbor{Index: other, Similarity: similarity})
		}
	}
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Similarity != neighbors[j].Similarity {
			return neighbors[i].Similarity > neighbors[j].Similarity
		}
		return neighbors[i].Index < neighbors[j].Index
	})
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors, nil
}
