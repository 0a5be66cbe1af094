package content

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jacinta25/social-media-API/internal/apperror"
	"github.com/jacinta25/social-media-API/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const postSelect = `
	SELECT p.id, p.author_id, u.username, p.title, p.content, p.created_at, p.updated_at,
	       (SELECT count(*) FROM likes l WHERE l.post_id = p.id)
	FROM posts p JOIN users u ON u.id = p.author_id`

const commentSelect = `
	SELECT c.id, c.post_id, c.author_id, u.username, c.content, c.created_at, c.updated_at
	FROM comments c JOIN users u ON u.id = c.author_id`

// Store persists posts, comments and likes. It enforces no ownership rules.
type Store struct {
	db db.Querier
}

func NewStore(q db.Querier) *Store {
	return &Store{db: q}
}

func (s *Store) CreatePost(ctx context.Context, input Post) (Post, error) {
	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO posts (id, author_id, title, content)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at, updated_at, (SELECT username FROM users WHERE id = $2)
	`, input.ID, input.AuthorID, input.Title, input.Content)
	if err := row.Scan(&input.CreatedAt, &input.UpdatedAt, &input.Author); err != nil {
		return Post{}, fmt.Errorf("insert post: %w", err)
	}
	input.LikeCount = 0
	return input, nil
}

func (s *Store) GetPost(ctx context.Context, id string) (Post, error) {
	post, err := scanPost(s.db.QueryRow(ctx, postSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return Post{}, apperror.NotFound("Post not found")
		}
		return Post{}, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

// likeEscaper makes filter values match literally under ILIKE, whose default
// escape character is backslash.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *Store) ListPosts(ctx context.Context, filter ListFilter) ([]Post, error) {
	var (
		clauses []string
		args    []any
	)
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, "%"+likeEscaper.Replace(value)+"%")
		clauses = append(clauses, column+" ILIKE $"+strconv.Itoa(len(args)))
	}
	add("p.title", filter.Title)
	add("p.content", filter.Content)
	add("u.username", filter.Author)

	sql := postSelect
	if len(clauses) > 0 {
		sql += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	sql += ` ORDER BY p.created_at DESC, p.id DESC`

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return collectPosts(rows)
}

// PostsByAuthors returns the posts written by any of authorIDs, newest first.
func (s *Store) PostsByAuthors(ctx context.Context, authorIDs []string) ([]Post, error) {
	rows, err := s.db.Query(ctx, postSelect+`
		WHERE p.author_id = ANY($1)
		ORDER BY p.created_at DESC, p.id DESC
	`, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("posts by authors: %w", err)
	}
	return collectPosts(rows)
}

// UpdatePost applies patch and bumps updated_at, never below created_at.
func (s *Store) UpdatePost(ctx context.Context, id string, patch PostUpdate) (Post, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE posts
		SET title = COALESCE($2, title),
		    content = COALESCE($3, content),
		    updated_at = GREATEST(now(), created_at, updated_at)
		WHERE id = $1
		RETURNING id, author_id, (SELECT username FROM users WHERE users.id = posts.author_id),
		          title, content, created_at, updated_at,
		          (SELECT count(*) FROM likes WHERE likes.post_id = posts.id)
	`, id, patch.Title, patch.Content)
	post, err := scanPost(row)
	if err != nil {
		if db.IsNoRows(err) {
			return Post{}, apperror.NotFound("Post not found")
		}
		return Post{}, fmt.Errorf("update post: %w", err)
	}
	return post, nil
}

// DeletePost removes the post; comments and likes go with it by cascade.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("Post not found")
	}
	return nil
}

func (s *Store) CreateComment(ctx context.Context, input Comment) (Comment, error) {
	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO comments (id, post_id, author_id, content)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at, updated_at, (SELECT username FROM users WHERE id = $3)
	`, input.ID, input.PostID, input.AuthorID, input.Content)
	if err := row.Scan(&input.CreatedAt, &input.UpdatedAt, &input.Author); err != nil {
		if db.IsForeignKeyViolation(err) {
			return Comment{}, apperror.NotFound("Post not found")
		}
		return Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	return input, nil
}

func (s *Store) GetComment(ctx context.Context, id string) (Comment, error) {
	comment, err := scanComment(s.db.QueryRow(ctx, commentSelect+` WHERE c.id = $1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return Comment{}, apperror.NotFound("Comment not found")
		}
		return Comment{}, fmt.Errorf("get comment: %w", err)
	}
	return comment, nil
}

// ListComments returns comments oldest first, limited to postID when it is
// not empty.
func (s *Store) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if postID == "" {
		rows, err = s.db.Query(ctx, commentSelect+` ORDER BY c.created_at, c.id`)
	} else {
		rows, err = s.db.Query(ctx, commentSelect+` WHERE c.post_id = $1 ORDER BY c.created_at, c.id`, postID)
	}
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func (s *Store) UpdateComment(ctx context.Context, id, content string) (Comment, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE comments
		SET content = $2, updated_at = GREATEST(now(), created_at, updated_at)
		WHERE id = $1
		RETURNING id, post_id, author_id, (SELECT username FROM users WHERE users.id = comments.author_id),
		          content, created_at, updated_at
	`, id, content)
	comment, err := scanComment(row)
	if err != nil {
		if db.IsNoRows(err) {
			return Comment{}, apperror.NotFound("Comment not found")
		}
		return Comment{}, fmt.Errorf("update comment: %w", err)
	}
	return comment, nil
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("Comment not found")
	}
	return nil
}

// InsertLike records a like by userID on postID. created is false when the
// pair already existed, either seen by ON CONFLICT or raced into the unique
// constraint.
func (s *Store) InsertLike(ctx context.Context, userID, postID string) (Like, bool, error) {
	like := Like{ID: uuid.NewString(), UserID: userID, PostID: postID}
	row := s.db.QueryRow(ctx, `
		INSERT INTO likes (id, user_id, post_id)
		VALUES ($1,$2,$3)
		ON CONFLICT (user_id, post_id) DO NOTHING
		RETURNING created_at
	`, like.ID, userID, postID)
	if err := row.Scan(&like.CreatedAt); err != nil {
		if db.IsNoRows(err) || db.IsUniqueViolation(err, db.LikeUniqueConstraint) {
			return Like{}, false, nil
		}
		if db.IsForeignKeyViolation(err) {
			return Like{}, false, apperror.NotFound("Post not found")
		}
		return Like{}, false, fmt.Errorf("insert like: %w", err)
	}
	return like, true, nil
}

// DeleteLike removes the like and reports whether one existed.
func (s *Store) DeleteLike(ctx context.Context, userID, postID string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM likes WHERE user_id = $1 AND post_id = $2
	`, userID, postID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) LikeCount(ctx context.Context, postID string) (int, error) {
	var count int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM likes WHERE post_id = $1`, postID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return count, nil
}

func scanPost(row pgx.Row) (Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.AuthorID, &p.Author, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt, &p.LikeCount)
	return p, err
}

func scanComment(row pgx.Row) (Comment, error) {
	var c Comment
	err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Author, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func collectPosts(rows pgx.Rows) ([]Post, error) {
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}
