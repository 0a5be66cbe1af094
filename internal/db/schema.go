package db

import (
	"context"
	"fmt"
)

// Constraint names referenced by stores when folding conflicts.
const (
	UsernameUniqueConstraint = "users_username_key"
	LikeUniqueConstraint     = "likes_user_post_key"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              UUID PRIMARY KEY,
		username        VARCHAR(150) NOT NULL,
		password_hash   TEXT NOT NULL,
		bio             TEXT NOT NULL DEFAULT '',
		profile_picture TEXT NOT NULL DEFAULT '',
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT users_username_key UNIQUE (username)
	)`,
	`CREATE TABLE IF NOT EXISTS user_follows (
		follower_id  UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		following_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (follower_id, following_id),
		CONSTRAINT user_follows_no_self CHECK (follower_id <> following_id)
	)`,
	`CREATE INDEX IF NOT EXISTS user_follows_following_idx ON user_follows (following_id)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id         UUID PRIMARY KEY,
		author_id  UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title      VARCHAR(200) NOT NULL,
		content    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS posts_author_created_idx ON posts (author_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id         UUID PRIMARY KEY,
		post_id    UUID NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		author_id  UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		content    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS comments_post_idx ON comments (post_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS likes (
		id         UUID PRIMARY KEY,
		user_id    UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		post_id    UUID NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT likes_user_post_key UNIQUE (user_id, post_id)
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id           UUID PRIMARY KEY,
		recipient_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		actor_id     UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		verb         VARCHAR(64) NOT NULL,
		target_type  VARCHAR(32) NOT NULL,
		target_id    UUID NOT NULL,
		read         BOOLEAN NOT NULL DEFAULT false,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS notifications_recipient_idx ON notifications (recipient_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         UUID PRIMARY KEY,
		user_id    UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token      TEXT NOT NULL UNIQUE,
		expires_at TIMESTAMPTZ NOT NULL,
		revoked_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate applies the schema. Every statement is idempotent.
func Migrate(ctx context.Context, q Querier) error {
	for i, stmt := range schema {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
