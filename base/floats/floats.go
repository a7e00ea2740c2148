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

// Package floats provides float32 vector arithmetic for latent factor models.
package floats

import "github.com/chewxy/math32"

// Zero fills vector a with zeros.
func Zero(a []float32) {
	for i := range a {
		a[i] = 0
	}
}

// MatZero fills matrix x with zeros.
func MatZero(x [][]float32) {
	for i := range x {
		for j := range x[i] {
			x[i][j] = 0
		}
	}
}

// Dot returns the dot product of a and b.
func Dot(a, b []float32) (ret float32) {
	if len(a) != len(b) {
		panic("floats: slice lengths do not match")
	}
	for i := range a {
		ret += a[i] * b[i]
	}
	return
}

// Norm returns the Euclidean norm of a.
func Norm(a []float32) float32 {
	var sum float32
	for _, v := range a {
		sum += v * v
	}
	return math32.Sqrt(sum)
}

// Add adds s to dst element-wise.
func Add(dst, s []float32) {
	if len(dst) != len(s) {
		panic("floats: slice lengths do not match")
	}
	for i := range dst {
		dst[i] += s[i]
	}
}

// Sub subtracts s from dst element-wise.
func Sub(dst, s []float32) {
	if len(dst) != len(s) {
		panic("floats: slice lengths do not match")
	}
	for i := range dst {
		dst[i] -= s[i]
	}
}

// SubTo stores a-b into dst.
func SubTo(a, b, dst []float32) {
	if len(a) != len(b) || len(a) != len(dst) {
		panic("floats: slice lengths do not match")
	}
	for i := range a {
		dst[i] = a[i] - b[i]
	}
}

// MulConst multiplies dst by c.
func MulConst(dst []float32, c float32) {
	for i := range dst {
		dst[i] *= c
	}
}

// MulConstTo stores a*c into dst.
func MulConstTo(a []float32, c float32, dst []float32) {
	if len(a) != len(dst) {
		panic("floats: slice lengths do not match")
	}
	for i := range a {
		dst[i] = a[i] * c
	}
}

// MulConstAdd adds a*c to dst.
func MulConstAdd(a []float32, c float32, dst []float32) {
	if len(a) != len(dst) {
		panic("floats: slice lengths do not match")
	}
	for i := range a {
		dst[i] += a[i] * c
	}
}
