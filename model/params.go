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
	"go.uber.org/zap"

	"github.com/bookclub-io/bookworm/base/log"
)

// ParamName is the name of a hyperparameter.
type ParamName string

const (
	K           ParamName = "K"             // number of neighbors
	MinK        ParamName = "MinK"          // least number of neighbors
	UserBased   ParamName = "UserBased"     // user based or item based
	Similarity  ParamName = "Similarity"    // similarity metric
	NFactors    ParamName = "NFactors"      // number of latent factors
	NEpochs     ParamName = "NEpochs"       // number of epochs
	Lr          ParamName = "Lr"            // learning rate
	Reg         ParamName = "Reg"           // regularization strength
	UseBias     ParamName = "UseBias"       // use bias terms
	InitMean    ParamName = "InitMean"      // mean of gaussian initial parameters
	InitStdDev  ParamName = "InitStdDev"    // standard deviation of gaussian initial parameters
	RandomState ParamName = "RandomState"   // random seed
)

const (
	SimilarityCosine  = "cosine"
	SimilarityMSD     = "msd"
	SimilarityPearson = "pearson"
)

// Params stores hyperparameters for a model. Getters fall back to the passed
// default when a parameter is absent or has the wrong type.
type Params map[ParamName]interface{}

// GetInt gets an integer parameter.
func (parameters Params) GetInt(name ParamName, _default int) int {
	if val, exist := parameters[name]; exist {
		switch value := val.(type) {
		case int:
			return value
		default:
			log.Logger().Warn("type mismatch in hyperparameter", zap.String("name", string(name)))
		}
	}
	return _default
}

// GetInt64 gets an int64 parameter. Integer values are accepted as well.
func (parameters Params) GetInt64(name ParamName, _default int64) int64 {
	if val, exist := parameters[name]; exist {
		switch value := val.(type) {
		case int64:
			return value
		case int:
			return int64(value)
		default:
			log.Logger().Warn("type mismatch in hyperparameter", zap.String("name", string(name)))
		}
	}
	return _default
}

// GetBool gets a boolean parameter.
func (parameters Params) GetBool(name ParamName, _default bool) bool {
	if val, exist := parameters[name]; exist {
		switch value := val.(type) {
		case bool:
			return value
		default:
			log.Logger().Warn("type mismatch in hyperparameter", zap.String("name", string(name)))
		}
	}
	return _default
}

// GetFloat64 gets a float parameter. Integer values are accepted as well.
func (parameters Params) GetFloat64(name ParamName, _default float64) float64 {
	if val, exist := parameters[name]; exist {
		switch value := val.(type) {
		case float64:
			return value
		case int:
			return float64(value)
		default:
			log.Logger().Warn("type mismatch in hyperparameter", zap.String("name", string(name)))
		}
	}
	return _default
}

// GetString gets a string parameter.
func (parameters Params) GetString(name ParamName, _default string) string {
	if val, exist := parameters[name]; exist {
		switch value := val.(type) {
		case string:
			return value
		default:
			log.Logger().Warn("type mismatch in hyperparameter", zap.String("name", string(name)))
		}
	}
	return _default
}

// Copy returns a deep copy of the parameters.
func (parameters Params) Copy() Params {
	newParams := make(Params)
	for name, value := range parameters {
		newParams[name] = value
	}
	return newParams
}

// Overwrite returns a copy with all parameters from other applied on top.
func (parameters Params) Overwrite(other Params) Params {
	merged := parameters.Copy()
	for name, value := range other {
		merged[name] = value
	}
	return merged
}
