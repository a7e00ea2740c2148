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

// Package config provides the configuration of the recommender service.
package config

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"
	"github.com/spf13/viper"

	"github.com/bookclub-io/bookworm/model"
)

// Config is the configuration of the recommender service.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Recommend RecommendConfig `mapstructure:"recommend"`
}

// DatabaseConfig is the configuration of the rating store connection.
type DatabaseConfig struct {
	// database connection string, e.g. sqlite://bookworm.db
	DSN string `mapstructure:"dsn" validate:"required"`
}

// RecommendConfig is the configuration of the recommendation engines.
type RecommendConfig struct {
	// collaborative model, neighborhood based or matrix factorization
	Model string `mapstructure:"model" validate:"oneof=knn svd"`
	// number of neighbors consulted per seed
	NeighborK int `mapstructure:"neighbor_k" validate:"gt=0"`
	// least number of neighbors required for a prediction
	MinNeighbors int `mapstructure:"min_neighbors" validate:"gt=0"`
	// compute user neighborhoods instead of book neighborhoods
	UserBased bool `mapstructure:"user_based"`
	// similarity metric for the neighborhood model
	Similarity string `mapstructure:"similarity" validate:"oneof=cosine msd pearson"`
	// number of latent factors of the factorization model
	NFactors int `mapstructure:"n_factors" validate:"gt=0"`
	// number of training epochs of the factorization model
	NEpochs int `mapstructure:"n_epochs" validate:"gt=0"`
	// learning rate of the factorization model
	Lr float64 `mapstructure:"lr" validate:"gt=0"`
	// regularization strength of the factorization model
	Reg float64 `mapstructure:"reg" validate:"gte=0"`
	// random seed of the factorization model
	RandomState int64 `mapstructure:"random_state"`
	// number of rating writes before an asynchronous retrain, zero means
	// one tenth of the user count
	RetrainThreshold int `mapstructure:"retrain_threshold" validate:"gte=0"`
	// time to live of memoized recommendation lists
	CacheTTL time.Duration `mapstructure:"cache_ttl" validate:"gt=0"`
	// capacity of the memoized recommendation lists
	CacheSize int `mapstructure:"cache_size" validate:"gt=0"`
	// default length of recommendation lists
	DefaultN int `mapstructure:"default_n" validate:"gt=0"`
}

// GetDefaultConfig returns the default configuration.
func GetDefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN: "sqlite://bookworm.db",
		},
		Recommend: RecommendConfig{
			Model:            "knn",
			NeighborK:        40,
			MinNeighbors:     1,
			UserBased:        false,
			Similarity:       "cosine",
			NFactors:         16,
			NEpochs:          50,
			Lr:               0.005,
			Reg:              0.02,
			RandomState:      0,
			RetrainThreshold: 0,
			CacheTTL:         10 * time.Minute,
			CacheSize:        10000,
			DefaultN:         10,
		},
	}
}

// LoadConfig loads and validates the configuration from a file. Missing keys
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	config := GetDefaultConfig()
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return nil, errors.Trace(err)
	}
	if err := viper.Unmarshal(config); err != nil {
		return nil, errors.Trace(err)
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return config, nil
}

// Validate checks the configuration against its constraints.
func (config *Config) Validate() error {
	return errors.Trace(validator.New().Struct(config))
}

// ModelParams converts the configuration into model hyperparameters.
func (config *RecommendConfig) ModelParams() model.Params {
	return model.Params{
		model.K:           config.NeighborK,
		model.MinK:        config.MinNeighbors,
		model.UserBased:   config.UserBased,
		model.Similarity:  config.Similarity,
		model.NFactors:    config.NFactors,
		model.NEpochs:     config.NEpochs,
		model.Lr:          config.Lr,
		model.Reg:         config.Reg,
		model.RandomState: config.RandomState,
	}
}
