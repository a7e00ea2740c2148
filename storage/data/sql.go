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

	"github.com/juju/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SQLDriver int

const (
	SQLite SQLDriver = iota
	MySQL
	Postgres
)

// SQLDatabase stores books, users, ratings, reading lists and clubs in a
// relational database through GORM.
type SQLDatabase struct {
	gormDB *gorm.DB
	driver SQLDriver
}

// Init tables and indices.
func (d *SQLDatabase) Init() error {
	err := d.gormDB.AutoMigrate(User{}, Book{}, Rating{}, Club{}, ClubMember{}, ClubBook{}, UserBook{})
	return errors.Trace(err)
}

// Ping the database.
func (d *SQLDatabase) Ping() error {
	db, err := d.gormDB.DB()
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(db.Ping())
}

// Close the database connection.
func (d *SQLDatabase) Close() error {
	db, err := d.gormDB.DB()
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(db.Close())
}

// Purge all data from the database.
func (d *SQLDatabase) Purge() error {
	for _, value := range []any{&User{}, &Book{}, &Rating{}, &Club{}, &ClubMember{}, &ClubBook{}, &UserBook{}} {
		if err := d.gormDB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(value).Error; err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// BatchInsertBooks inserts books, replacing existing rows with the same id.
func (d *SQLDatabase) BatchInsertBooks(ctx context.Context, books []Book) error {
	if len(books) == 0 {
		return nil
	}
	err := d.gormDB.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(books).Error
	return errors.Trace(err)
}

// BatchInsertUsers inserts users, replacing existing rows with the same id.
func (d *SQLDatabase) BatchInsertUsers(ctx context.Context, users []User) error {
	if len(users) == 0 {
		return nil
	}
	err := d.gormDB.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(users).Error
	return errors.Trace(err)
}

// GetBook returns a book by id.
func (d *SQLDatabase) GetBook(ctx context.Context, bookId string) (Book, error) {
	var book Book
	if err := d.gormDB.WithContext(ctx).Where("book_id = ?", bookId).First(&book).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Book{}, errors.Annotate(ErrBookNotExist, bookId)
		}
		return Book{}, errors.Trace(err)
	}
	return book, nil
}

// GetUser returns a user by id.
func (d *SQLDatabase) GetUser(ctx context.Context, userId string) (User, error) {
	var user User
	if err := d.gormDB.WithContext(ctx).Where("user_id = ?", userId).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return User{}, errors.Annotate(ErrUserNotExist, userId)
		}
		return User{}, errors.Trace(err)
	}
	return user, nil
}

// GetClub returns a club by id.
func (d *SQLDatabase) GetClub(ctx context.Context, clubId string) (Club, error) {
	var club Club
	if err := d.gormDB.WithContext(ctx).Where("club_id = ?", clubId).First(&club).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Club{}, errors.Annotate(ErrClubNotExist, clubId)
		}
		return Club{}, errors.Trace(err)
	}
	return club, nil
}

// InsertClub inserts a club, replacing an existing row with the same id.
func (d *SQLDatabase) InsertClub(ctx context.Context, club Club) error {
	err := d.gormDB.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&club).Error
	return errors.Trace(err)
}

// InsertRating upserts a rating. The (user, book) pair is the primary key so a
// repeated insert replaces the value instead of creating a duplicate row.
func (d *SQLDatabase) InsertRating(ctx context.Context, rating Rating) error {
	err := d.gormDB.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&rating).Error
	return errors.Trace(err)
}

// AddUserBook adds a book to a user's reading list.
func (d *SQLDatabase) AddUserBook(ctx context.Context, userId, bookId string) error {
	err := d.gormDB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&UserBook{UserId: userId, BookId: bookId}).Error
	return errors.Trace(err)
}

// AddClubMember adds a user to a club.
func (d *SQLDatabase) AddClubMember(ctx context.Context, clubId, userId string) error {
	err := d.gormDB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&ClubMember{ClubId: clubId, UserId: userId}).Error
	return errors.Trace(err)
}

// AddClubBook associates a book with a club.
func (d *SQLDatabase) AddClubBook(ctx context.Context, clubId, bookId string) error {
	err := d.gormDB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&ClubBook{ClubId: clubId, BookId: bookId}).Error
	return errors.Trace(err)
}

// ListRatings returns all ratings without pagination.
func (d *SQLDatabase) ListRatings(ctx context.Context) ([]Rating, error) {
	var ratings []Rating
	if err := d.gormDB.WithContext(ctx).Order("time_stamp, user_id, book_id").Find(&ratings).Error; err != nil {
		return nil, errors.Trace(err)
	}
	return ratings, nil
}

// ListBooks returns all books joined with their average rating and reader count.
func (d *SQLDatabase) ListBooks(ctx context.Context) ([]BookStats, error) {
	var stats []BookStats
	err := d.gormDB.WithContext(ctx).Table("book").
		Select("book.book_id, book.genres, " +
			"COALESCE((SELECT AVG(value) FROM rating WHERE rating.book_id = book.book_id), 0) AS avg_rating, " +
			"(SELECT COUNT(*) FROM user_book WHERE user_book.book_id = book.book_id) AS reader_count").
		Order("book.book_id").
		Scan(&stats).Error
	if err != nil {
		return nil, errors.Trace(err)
	}
	return stats, nil
}

// GetUserBooks returns the ids of the books on a user's reading list.
func (d *SQLDatabase) GetUserBooks(ctx context.Context, userId string) ([]string, error) {
	var bookIds []string
	err := d.gormDB.WithContext(ctx).Model(&UserBook{}).
		Where("user_id = ?", userId).
		Order("book_id").
		Pluck("book_id", &bookIds).Error
	if err != nil {
		return nil, errors.Trace(err)
	}
	return bookIds, nil
}

// GetClubMembers returns the ids of a club's members.
func (d *SQLDatabase) GetClubMembers(ctx context.Context, clubId string) ([]string, error) {
	var userIds []string
	err := d.gormDB.WithContext(ctx).Model(&ClubMember{}).
		Where("club_id = ?", clubId).
		Order("user_id").
		Pluck("user_id", &userIds).Error
	if err != nil {
		return nil, errors.Trace(err)
	}
	return userIds, nil
}

// GetClubBooks returns the ids of the books a club has read or scheduled.
func (d *SQLDatabase) GetClubBooks(ctx context.Context, clubId string) ([]string, error) {
	var bookIds []string
	err := d.gormDB.WithContext(ctx).Model(&ClubBook{}).
		Where("club_id = ?", clubId).
		Order("book_id").
		Pluck("book_id", &bookIds).Error
	if err != nil {
		return nil, errors.Trace(err)
	}
	return bookIds, nil
}

// CountUsers returns the number of users.
func (d *SQLDatabase) CountUsers(ctx context.Context) (int, error) {
	var count int64
	if err := d.gormDB.WithContext(ctx).Model(&User{}).Count(&count).Error; err != nil {
		return 0, errors.Trace(err)
	}
	return int(count), nil
}
