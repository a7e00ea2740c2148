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

package parallel

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/atomic"
)

func TestParallel(t *testing.T) {
	done := make([]bool, 100)
	err := Parallel(len(done), 4, func(_, taskId int) error {
		done[taskId] = true
		return nil
	})
	assert.NoError(t, err)
	for _, ok := range done {
		assert.True(t, ok)
	}
}

func TestParallelSerial(t *testing.T) {
	count := atomic.NewInt64(0)
	err := Parallel(10, 1, func(workerId, _ int) error {
		assert.Zero(t, workerId)
		count.Inc()
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(10), count.Load())
}

func TestParallelError(t *testing.T) {
	bad := errors.New("bad task")
	err := Parallel(10, 4, func(_, taskId int) error {
		if taskId == 5 {
			return bad
		}
		return nil
	})
	assert.ErrorIs(t, err, bad)
}
