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

package data

import "context"

// NoDatabase means no database is configured. Every operation fails with
// ErrNoDatabase.
type NoDatabase struct{}

func (NoDatabase) Init() error {
	return ErrNoDatabase
}

func (NoDatabase) Ping() error {
	return ErrNoDatabase
}

func (NoDatabase) Close() error {
	return ErrNoDatabase
}

func (NoDatabase) Purge() error {
	return ErrNoDatabase
}

func (NoDatabase) BatchInsertBooks(_ context.Context, _ []Book) error {
	return ErrNoDatabase
}

func (NoDatabase) BatchInsertUsers(_ context.Context, _ []User) error {
	return ErrNoDatabase
}

func (NoDatabase) GetBook(_ context.Context, _ string) (Book, error) {
	return Book{}, ErrNoDatabase
}

func (NoDatabase) GetUser(_ context.Context, _ string) (User, error) {
	return User{}, ErrNoDatabase
}

func (NoDatabase) GetClub(_ context.Context, _ string) (Club, error) {
	return Club{}, ErrNoDatabase
}

func (NoDatabase) InsertClub(_ context.Context, _ Club) error {
	return ErrNoDatabase
}

func (NoDatabase) InsertRating(_ context.Context, _ Rating) error {
	return ErrNoDatabase
}

func (NoDatabase) AddUserBook(_ context.Context, _, _ string) error {
	return ErrNoDatabase
}

func (NoDatabase) AddClubMember(_ context.Context, _, _ string) error {
	return ErrNoDatabase
}

func (NoDatabase) AddClubBook(_ context.Context, _, _ string) error {
	return ErrNoDatabase
}

func (NoDatabase) ListRatings(_ context.Context) ([]Rating, error) {
	return nil, ErrNoDatabase
}

func (NoDatabase) ListBooks(_ context.Context) ([]BookStats, error) {
	return nil, ErrNoDatabase
}

func (NoDatabase) GetUserBooks(_ context.Context, _ string) ([]string, error) {
	return nil, ErrNoDatabase
}

func (NoDatabase) GetClubMembers(_ context.Context, _ string) ([]string, error) {
	return nil, ErrNoDatabase
}

func (NoDatabase) GetClubBooks(_ context.Context, _ string) ([]string, error) {
	return nil, ErrNoDatabase
}

func (NoDatabase) CountUsers(_ context.Context) (int, error) {
	return 0, ErrNoDatabase
}
