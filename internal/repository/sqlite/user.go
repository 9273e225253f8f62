package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hiroyoshii/twitter-clone-api/internal/apperror"
	"github.com/hiroyoshii/twitter-clone-api/internal/model"
	"github.com/hiroyoshii/twitter-clone-api/internal/repository"
)

// Compile-time check that *DB implements repository.UserRepository.
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, user_id, e_mail, password_hash, user_name,
	phone_number, self_introduction, place, birthday, profile_img, avatar_img,
	created_at, updated_at`

// CreateUser inserts a new user.
//
// The duplicate checks run before the INSERT so the caller gets a
// descriptive Conflict naming the offending field, instead of a raw
// UNIQUE-constraint error. Check and insert share a transaction so the
// window between them can't commit a half-decided state; two truly
// concurrent registrations of the same handle still end with one losing
// on the UNIQUE constraint, which also comes back as a Conflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE e_mail = ?`, user.Email,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("sqlite: checking e_mail uniqueness: %w", err)
	}
	if exists > 0 {
		return apperror.Conflict("e_mail", "this e-mail address is already registered")
	}

	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE user_id = ?`, user.UserID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("sqlite: checking user_id uniqueness: %w", err)
	}
	if exists > 0 {
		return apperror.Conflict("user_id", "this user id is already taken")
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := tx.ExecContext(ctx,
		`INSERT INTO users (user_id, e_mail, password_hash, user_name,
			phone_number, self_introduction, place, birthday, profile_img, avatar_img,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.UserID,
		user.Email,
		user.PasswordHash,
		user.UserName,
		nullString(user.PhoneNumber),
		nullString(user.SelfIntroduction),
		nullString(user.Place),
		nullString(user.Birthday),
		nullString(user.ProfileImg),
		nullString(user.AvatarImg),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user %s: %w", user.UserID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading user insert id: %w", err)
	}
	user.ID = id

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing user insert: %w", err)
	}
	return nil
}

// GetByEmail looks up a user by e-mail address. Returns (nil, nil) on a
// miss — the auth service depends on that to keep "no such user" and
// "wrong password" indistinguishable.
func (db *DB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE e_mail = ?`, email)
}

// GetByUserID looks up a user by public handle. Returns (nil, nil) on a miss.
func (db *DB) GetByUserID(ctx context.Context, userID string) (*model.User, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = ?`, userID)
}

func (db *DB) getUser(ctx context.Context, query string, arg any) (*model.User, error) {
	var (
		u                             model.User
		phone, intro, place, birthday sql.NullString
		profileImg, avatarImg         sql.NullString
	)

	err := db.conn.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.UserID,
		&u.Email,
		&u.PasswordHash,
		&u.UserName,
		&phone,
		&intro,
		&place,
		&birthday,
		&profileImg,
		&avatarImg,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}

	u.PhoneNumber = ptrString(phone)
	u.SelfIntroduction = ptrString(intro)
	u.Place = ptrString(place)
	u.Birthday = ptrString(birthday)
	u.ProfileImg = ptrString(profileImg)
	u.AvatarImg = ptrString(avatarImg)

	return &u, nil
}

// nullString converts an optional field to its driver value.
func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// ptrString converts a scanned nullable column back to an optional field.
func ptrString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
