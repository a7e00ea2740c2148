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
	"strings"
	"time"

	"github.com/juju/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

const (
	SQLitePrefix   = "sqlite://"
	MySQLPrefix    = "mysql://"
	PostgresPrefix = "postgres://"
)

var (
	ErrUserNotExist = errors.NotFoundf("user")
	ErrBookNotExist = errors.NotFoundf("book")
	ErrClubNotExist = errors.NotFoundf("club")
	ErrNoDatabase   = errors.NotAssignedf("database")
)

// Book stores metadata about a book. Genres is the comma-separated free-text
// genre string maintained by the surrounding application.
type Book struct {
	BookId  string `gorm:"column:book_id;primaryKey"`
	Title   string `gorm:"column:title"`
	Genres  string `gorm:"column:genres"`
	Comment string `gorm:"column:comment"`
}

// User stores metadata about a user.
type User struct {
	UserId  string `gorm:"column:user_id;primaryKey"`
	Comment string `gorm:"column:comment"`
}

// Rating stores one user's rating of one book. At most one rating exists per
// (user, book) pair; an insert with the same key replaces the previous value.
type Rating struct {
	UserId    string    `gorm:"column:user_id;primaryKey"`
	BookId    string    `gorm:"column:book_id;primaryKey"`
	Value     float64   `gorm:"column:value"`
	Timestamp time.Time `gorm:"column:time_stamp"`
}

// Club stores metadata about a book club.
type Club struct {
	ClubId  string `gorm:"column:club_id;primaryKey"`
	Name    string `gorm:"column:name"`
	Comment string `gorm:"column:comment"`
}

// ClubMember associates a user with a club.
type ClubMember struct {
	ClubId string `gorm:"column:club_id;primaryKey"`
	UserId string `gorm:"column:user_id;primaryKey"`
}

// ClubBook associates a book with a club.
type ClubBook struct {
	ClubId string `gorm:"column:club_id;primaryKey"`
	BookId string `gorm:"column:book_id;primaryKey"`
}

// UserBook associates a book with a user's reading list.
type UserBook struct {
	UserId string `gorm:"column:user_id;primaryKey"`
	BookId string `gorm:"column:book_id;primaryKey"`
}

// BookStats is a book joined with its rating statistics, consumed by the
// popularity ranking and the genre index.
type BookStats struct {
	BookId      string  `gorm:"column:book_id"`
	Genres      string  `gorm:"column:genres"`
	AvgRating   float64 `gorm:"column:avg_rating"`
	ReaderCount int     `gorm:"column:reader_count"`
}

// Database is the storage interface consumed by the recommendation engine. The
// write operations belong to the surrounding application; the engine itself
// only reads.
type Database interface {
	Init() error
	Ping() error
	Close() error
	Purge() error
	BatchInsertBooks(ctx context.Context, books []Book) error
	BatchInsertUsers(ctx context.Context, users []User) error
	GetBook(ctx context.Context, bookId string) (Book, error)
	GetUser(ctx context.Context, userId string) (User, error)
	GetClub(ctx context.Context, clubId string) (Club, error)
	InsertClub(ctx context.Context, club Club) error
	InsertRating(ctx context.Context, rating Rating) error
	AddUserBook(ctx context.Context, userId, bookId string) error
	AddClubMember(ctx context.Context, clubId, userId string) error
	AddClubBook(ctx context.Context, clubId, bookId string) error
	ListRatings(ctx context.Context) ([]Rating, error)
	ListBooks(ctx context.Context) ([]BookStats, error)
	GetUserBooks(ctx context.Context, userId string) ([]string, error)
	GetClubMembers(ctx context.Context, clubId string) ([]string, error)
	GetClubBooks(ctx context.Context, clubId string) ([]string, error)
	CountUsers(ctx context.Context) (int, error)
}

var gormConfig = &gorm.Config{
	NamingStrategy: schema.NamingStrategy{
		SingularTable: true,
	},
}

// Open a connection to a database. The storage backend is selected by the URL
// scheme: sqlite://, mysql:// or postgres://.
func Open(path string) (Database, error) {
	var err error
	if strings.HasPrefix(path, SQLitePrefix) {
		name := path[len(SQLitePrefix):]
		database := new(SQLDatabase)
		database.driver = SQLite
		database.gormDB, err = gorm.Open(sqlite.Open(name), gormConfig)
		if err != nil {
			return nil, errors.Trace(err)
		}
		return database, nil
	} else if strings.HasPrefix(path, MySQLPrefix) {
		name := path[len(MySQLPrefix):]
		database := new(SQLDatabase)
		database.driver = MySQL
		database.gormDB, err = gorm.Open(mysql.Open(name), gormConfig)
		if err != nil {
			return nil, errors.Trace(err)
		}
		return database, nil
	} else if strings.HasPrefix(path, PostgresPrefix) {
		database := new(SQLDatabase)
		database.driver = Postgres
		database.gormDB, err = gorm.Open(postgres.Open(path), gormConfig)
		if err != nil {
			return nil, errors.Trace(err)
		}
		return database, nil
	}
	return nil, errors.Errorf("unknown database: %s", path)
}
