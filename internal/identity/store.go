package identity

import (
	"context"
	"fmt"

	"github.com/jacinta25/social-media-API/internal/apperror"
	"github.com/jacinta25/social-media-API/internal/db"

	"github.com/google/uuid"
)

const userColumns = `id, username, password_hash, bio, profile_picture, created_at`

// Store persists users and the follow graph. Follow edges live in their own
// table keyed by (follower_id, following_id); both the followers and the
// following view are queries over that one relation.
type Store struct {
	db db.Querier
}

func NewStore(q db.Querier) *Store {
	return &Store{db: q}
}

func (s *Store) Create(ctx context.Context, input User) (User, error) {
	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO users (id, username, password_hash, bio, profile_picture)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, input.ID, input.Username, input.PasswordHash, input.Bio, input.ProfilePicture)
	if err := row.Scan(&input.CreatedAt); err != nil {
		if db.IsUniqueViolation(err, db.UsernameUniqueConstraint) {
			return User{}, apperror.DuplicateUsername()
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return input, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (User, error) {
	return s.getBy(ctx, "id", id)
}

func (s *Store) GetByUsername(ctx context.Context, username string) (User, error) {
	return s.getBy(ctx, "username", username)
}

func (s *Store) getBy(ctx context.Context, column, value string) (User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, value)
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Bio, &u.ProfilePicture, &u.CreatedAt); err != nil {
		if db.IsNoRows(err) {
			return User{}, apperror.NotFound("User not found")
		}
		return User{}, fmt.Errorf("get user by %s: %w", column, err)
	}
	return u, nil
}

func (s *Store) Profile(ctx context.Context, id string) (Profile, error) {
	row := s.db.QueryRow(ctx, `
		SELECT u.id, u.username, u.password_hash, u.bio, u.profile_picture, u.created_at,
		       (SELECT count(*) FROM user_follows f WHERE f.following_id = u.id),
		       (SELECT count(*) FROM user_follows f WHERE f.follower_id = u.id)
		FROM users u
		WHERE u.id = $1
	`, id)
	var p Profile
	if err := row.Scan(&p.ID, &p.Username, &p.PasswordHash, &p.Bio, &p.ProfilePicture, &p.CreatedAt, &p.FollowersCount, &p.FollowingCount); err != nil {
		if db.IsNoRows(err) {
			return Profile{}, apperror.NotFound("User not found")
		}
		return Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id string, patch ProfileUpdate) (User, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE users
		SET bio = COALESCE($2, bio), profile_picture = COALESCE($3, profile_picture)
		WHERE id = $1
		RETURNING `+userColumns, id, patch.Bio, patch.ProfilePicture)
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Bio, &u.ProfilePicture, &u.CreatedAt); err != nil {
		if db.IsNoRows(err) {
			return User{}, apperror.NotFound("User not found")
		}
		return User{}, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

// AddFollow inserts the edge follower -> following. It reports whether the
// edge is new; an existing edge is left untouched.
func (s *Store) AddFollow(ctx context.Context, followerID, followingID string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO user_follows (follower_id, following_id)
		VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, followerID, followingID)
	if err != nil {
		return false, fmt.Errorf("insert follow: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// RemoveFollow deletes the edge if present and reports whether it existed.
func (s *Store) RemoveFollow(ctx context.Context, followerID, followingID string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM user_follows
		WHERE follower_id = $1 AND following_id = $2
	`, followerID, followingID)
	if err != nil {
		return false, fmt.Errorf("delete follow: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) Followers(ctx context.Context, userID string) ([]Summary, error) {
	return s.summaries(ctx, `
		SELECT u.id, u.username
		FROM user_follows f JOIN users u ON u.id = f.follower_id
		WHERE f.following_id = $1
		ORDER BY f.created_at DESC
	`, userID)
}

func (s *Store) Following(ctx context.Context, userID string) ([]Summary, error) {
	return s.summaries(ctx, `
		SELECT u.id, u.username
		FROM user_follows f JOIN users u ON u.id = f.following_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC
	`, userID)
}

func (s *Store) summaries(ctx context.Context, sql, userID string) ([]Summary, error) {
	rows, err := s.db.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("list follows: %w", err)
	}
	defer rows.Close()

	users := []Summary{}
	for rows.Next() {
		var u Summary
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// FollowingIDs returns the ids of every user that userID follows.
func (s *Store) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT following_id FROM user_follows WHERE follower_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list following ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
