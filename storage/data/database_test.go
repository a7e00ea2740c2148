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

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type SQLiteTestSuite struct {
	suite.Suite
	Database
}

func (suite *SQLiteTestSuite) SetupTest() {
	var err error
	path := SQLitePrefix + filepath.Join(suite.T().TempDir(), "bookworm.db")
	suite.Database, err = Open(path)
	suite.NoError(err)
	suite.NoError(suite.Database.Init())
}

func (suite *SQLiteTestSuite) TearDownTest() {
	suite.NoError(suite.Database.Close())
}

func (suite *SQLiteTestSuite) TestPing() {
	suite.NoError(suite.Database.Ping())
}

func (suite *SQLiteTestSuite) TestUsers() {
	ctx := context.Background()
	suite.NoError(suite.Database.BatchInsertUsers(ctx, []User{{UserId: "alice"}, {UserId: "bob"}}))

	user, err := suite.Database.GetUser(ctx, "alice")
	suite.NoError(err)
	suite.Equal("alice", user.UserId)
	_, err = suite.Database.GetUser(ctx, "carol")
	suite.ErrorIs(err, ErrUserNotExist)

	count, err := suite.Database.CountUsers(ctx)
	suite.NoError(err)
	suite.Equal(2, count)
}

func (suite *SQLiteTestSuite) TestBooks() {
	ctx := context.Background()
	suite.NoError(suite.Database.BatchInsertBooks(ctx, []Book{
		{BookId: "dune", Title: "Dune", Genres: "fiction, sci-fi"},
	}))
	book, err := suite.Database.GetBook(ctx, "dune")
	suite.NoError(err)
	suite.Equal("fiction, sci-fi", book.Genres)

	// inserting again replaces the row
	suite.NoError(suite.Database.BatchInsertBooks(ctx, []Book{
		{BookId: "dune", Title: "Dune", Genres: "sci-fi"},
	}))
	book, err = suite.Database.GetBook(ctx, "dune")
	suite.NoError(err)
	suite.Equal("sci-fi", book.Genres)

	_, err = suite.Database.GetBook(ctx, "nothing")
	suite.ErrorIs(err, ErrBookNotExist)
}

func (suite *SQLiteTestSuite) TestRatings() {
	ctx := context.Background()
	suite.NoError(suite.Database.InsertRating(ctx, Rating{UserId: "alice", BookId: "dune", Value: 6}))
	suite.NoError(suite.Database.InsertRating(ctx, Rating{UserId: "alice", BookId: "emma", Value: 4}))
	// at most one rating per (user, book) pair
	suite.NoError(suite.Database.InsertRating(ctx, Rating{UserId: "alice", BookId: "dune", Value: 9}))

	ratings, err := suite.Database.ListRatings(ctx)
	suite.NoError(err)
	suite.Len(ratings, 2)
	for _, rating := range ratings {
		if rating.BookId == "dune" {
			suite.Equal(9.0, rating.Value)
		}
	}
}

func (suite *SQLiteTestSuite) TestListBooks() {
	ctx := context.Background()
	suite.NoError(suite.Database.BatchInsertBooks(ctx, []Book{
		{BookId: "dune", Genres: "fiction"},
		{BookId: "emma", Genres: "romance"},
	}))
	suite.NoError(suite.Database.InsertRating(ctx, Rating{UserId: "alice", BookId: "dune", Value: 8}))
	suite.NoError(suite.Database.InsertRating(ctx, Rating{UserId: "bob", BookId: "dune", Value: 6}))
	suite.NoError(suite.Database.AddUserBook(ctx, "alice", "dune"))
	suite.NoError(suite.Database.AddUserBook(ctx, "alice", "dune"))

	stats, err := suite.Database.ListBooks(ctx)
	suite.NoError(err)
	suite.Len(stats, 2)
	suite.Equal("dune", stats[0].BookId)
	suite.Equal(7.0, stats[0].AvgRating)
	suite.Equal(1, stats[0].ReaderCount)
	suite.Equal("emma", stats[1].BookId)
	suite.Zero(stats[1].AvgRating)
	suite.Zero(stats[1].ReaderCount)
}

func (suite *SQLiteTestSuite) TestReadingList() {
	ctx := context.Background()
	suite.NoError(suite.Database.AddUserBook(ctx, "alice", "emma"))
	suite.NoError(suite.Database.AddUserBook(ctx, "alice", "dune"))

	books, err := suite.Database.GetUserBooks(ctx, "alice")
	suite.NoError(err)
	suite.Equal([]string{"dune", "emma"}, books)

	books, err = suite.Database.GetUserBooks(ctx, "bob")
	suite.NoError(err)
	suite.Empty(books)
}

func (suite *SQLiteTestSuite) TestClubs() {
	ctx := context.Background()
	suite.NoError(suite.Database.InsertClub(ctx, Club{ClubId: "readers", Name: "Readers"}))
	suite.NoError(suite.Database.AddClubMember(ctx, "readers", "alice"))
	suite.NoError(suite.Database.AddClubMember(ctx, "readers", "bob"))
	suite.NoError(suite.Database.AddClubBook(ctx, "readers", "dune"))

	club, err := suite.Database.GetClub(ctx, "readers")
	suite.NoError(err)
	suite.Equal("Readers", club.Name)
	_, err = suite.Database.GetClub(ctx, "nowhere")
	suite.ErrorIs(err, ErrClubNotExist)

	members, err := suite.Database.GetClubMembers(ctx, "readers")
	suite.NoError(err)
	suite.Equal([]string{"alice", "bob"}, members)

	books, err := suite.Database.GetClubBooks(ctx, "readers")
	suite.NoError(err)
	suite.Equal([]string{"dune"}, books)
}

func (suite *SQLiteTestSuite) TestPurge() {
	ctx := context.Background()
	suite.NoError(suite.Database.BatchInsertUsers(ctx, []User{{UserId: "alice"}}))
	suite.NoError(suite.Database.InsertRating(ctx, Rating{UserId: "alice", BookId: "dune", Value: 6}))
	suite.NoError(suite.Database.Purge())

	count, err := suite.Database.CountUsers(ctx)
	suite.NoError(err)
	suite.Zero(count)
	ratings, err := suite.Database.ListRatings(ctx)
	suite.NoError(err)
	suite.Empty(ratings)
}

func TestSQLiteTestSuite(t *testing.T) {
	suite.Run(t, new(SQLiteTestSuite))
}

func TestOpenUnknownScheme(t *testing.T) {
	_, err := Open("redis://localhost:6379")
	assert.Error(t, err)
}

func TestNoDatabase(t *testing.T) {
	ctx := context.Background()
	var database NoDatabase
	assert.ErrorIs(t, database.Init(), ErrNoDatabase)
	assert.ErrorIs(t, database.Ping(), ErrNoDatabase)
	_, err := database.GetUser(ctx, "alice")
	assert.ErrorIs(t, err, ErrNoDatabase)
	_, err = database.ListRatings(ctx)
	assert.ErrorIs(t, err, ErrNoDatabase)
}
