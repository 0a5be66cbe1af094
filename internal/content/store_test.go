package content

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jacinta25/social-media-API/internal/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
)

var errContent = errors.New("content error")

var (
	postColumns    = []string{"id", "author_id", "username", "title", "content", "created_at", "updated_at", "like_count"}
	commentColumns = []string{"id", "post_id", "author_id", "username", "content", "created_at", "updated_at"}
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestCreateAndGetPost(t *testing.T) {
	mock := newMock(t)
	now := time.Now()
	mock.ExpectQuery(`INSERT INTO posts`).
		WithArgs(pgxmock.AnyArg(), "user-1", "title", "body").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at", "username"}).AddRow(now, now, "alice"))
	mock.ExpectQuery(`FROM posts p JOIN users u ON u.id = p.author_id WHERE p.id = \$1`).
		WithArgs("post-1").
		WillReturnRows(pgxmock.NewRows(postColumns).AddRow("post-1", "user-1", "alice", "title", "body", now, now, 2))
	mock.ExpectQuery(`WHERE p.id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	store := NewStore(mock)
	ctx := context.Background()
	post, err := store.CreatePost(ctx, Post{AuthorID: "user-1", Title: "title", Content: "body"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if post.ID == "" || post.Author != "alice" || post.UpdatedAt.Before(post.CreatedAt) {
		t.Fatalf("unexpected post: %+v", post)
	}

	got, err := store.GetPost(ctx, "post-1")
	if err != nil || got.LikeCount != 2 {
		t.Fatalf("get post: %+v %v", got, err)
	}
	if _, err := store.GetPost(ctx, "missing"); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListPostsFilters(t *testing.T) {
	mock := newMock(t)
	now := time.Now()
	mock.ExpectQuery(`WHERE p.title ILIKE \$1 AND u.username ILIKE \$2 ORDER BY p.created_at DESC, p.id DESC`).
		WithArgs("%hello%", "%ali%").
		WillReturnRows(pgxmock.NewRows(postColumns).AddRow("post-1", "user-1", "alice", "hello world", "body", now, now, 0))
	mock.ExpectQuery(`p.author_id ORDER BY p.created_at DESC`).
		WillReturnRows(pgxmock.NewRows(postColumns))

	store := NewStore(mock)
	posts, err := store.ListPosts(context.Background(), ListFilter{Title: "hello", Author: "ali"})
	if err != nil || len(posts) != 1 {
		t.Fatalf("filtered list: %+v %v", posts, err)
	}
	all, err := store.ListPosts(context.Background(), ListFilter{})
	if err != nil || all == nil || len(all) != 0 {
		t.Fatalf("unfiltered list should be empty: %+v %v", all, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostsByAuthors(t *testing.T) {
	mock := newMock(t)
	newer := time.Now()
	older := newer.Add(-time.Hour)
	mock.ExpectQuery(`WHERE p.author_id = ANY\(\$1\)\s+ORDER BY p.created_at DESC`).
		WithArgs([]string{"user-2", "user-3"}).
		WillReturnRows(pgxmock.NewRows(postColumns).
			AddRow("post-2", "user-3", "carol", "t2", "c2", newer, newer, 0).
			AddRow("post-1", "user-2", "bob", "t1", "c1", older, older, 1))

	posts, err := NewStore(mock).PostsByAuthors(context.Background(), []string{"user-2", "user-3"})
	if err != nil || len(posts) != 2 || posts[0].ID != "post-2" {
		t.Fatalf("posts by authors: %+v %v", posts, err)
	}
}

func TestUpdateAndDeletePost(t *testing.T) {
	mock := newMock(t)
	created := time.Now().Add(-time.Minute)
	updated := time.Now()
	title := "new title"
	mock.ExpectQuery(`UPDATE posts`).
		WithArgs("post-1", &title, (*string)(nil)).
		WillReturnRows(pgxmock.NewRows(postColumns).AddRow("post-1", "user-1", "alice", title, "body", created, updated, 0))
	mock.ExpectQuery(`UPDATE posts`).
		WithArgs("missing", &title, (*string)(nil)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`DELETE FROM posts`).
		WithArgs("post-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM posts`).
		WithArgs("post-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	store := NewStore(mock)
	ctx := context.Background()
	post, err := store.UpdatePost(ctx, "post-1", PostUpdate{Title: &title})
	if err != nil || post.Title != title || !post.UpdatedAt.After(post.CreatedAt) {
		t.Fatalf("update post: %+v %v", post, err)
	}
	if _, err := store.UpdatePost(ctx, "missing", PostUpdate{Title: &title}); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.DeletePost(ctx, "post-1"); err != nil {
		t.Fatalf("delete post: %v", err)
	}
	if err := store.DeletePost(ctx, "post-1"); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestComments(t *testing.T) {
	mock := newMock(t)
	now := time.Now()
	mock.ExpectQuery(`INSERT INTO comments`).
		WithArgs(pgxmock.AnyArg(), "post-1", "user-1", "nice").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at", "username"}).AddRow(now, now, "alice"))
	mock.ExpectQuery(`INSERT INTO comments`).
		WithArgs(pgxmock.AnyArg(), "gone", "user-1", "nice").
		WillReturnError(&pgconn.PgError{Code: "23503"})
	mock.ExpectQuery(`WHERE c.post_id = \$1 ORDER BY c.created_at, c.id`).
		WithArgs("post-1").
		WillReturnRows(pgxmock.NewRows(commentColumns).AddRow("comment-1", "post-1", "user-1", "alice", "nice", now, now))
	mock.ExpectQuery(`c.author_id ORDER BY c.created_at, c.id`).
		WillReturnRows(pgxmock.NewRows(commentColumns))
	mock.ExpectQuery(`WHERE c.id = \$1`).
		WithArgs("comment-1").
		WillReturnRows(pgxmock.NewRows(commentColumns).AddRow("comment-1", "post-1", "user-1", "alice", "nice", now, now))
	mock.ExpectQuery(`UPDATE comments`).
		WithArgs("comment-1", "edited").
		WillReturnRows(pgxmock.NewRows(commentColumns).AddRow("comment-1", "post-1", "user-1", "alice", "edited", now, now.Add(time.Second)))
	mock.ExpectExec(`DELETE FROM comments`).
		WithArgs("comment-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	store := NewStore(mock)
	ctx := context.Background()
	comment, err := store.CreateComment(ctx, Comment{PostID: "post-1", AuthorID: "user-1", Content: "nice"})
	if err != nil || comment.ID == "" || comment.Author != "alice" {
		t.Fatalf("create comment: %+v %v", comment, err)
	}
	if _, err := store.CreateComment(ctx, Comment{PostID: "gone", AuthorID: "user-1", Content: "nice"}); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found for deleted post, got %v", err)
	}
	comments, err := store.ListComments(ctx, "post-1")
	if err != nil || len(comments) != 1 {
		t.Fatalf("list comments: %+v %v", comments, err)
	}
	if all, err := store.ListComments(ctx, ""); err != nil || len(all) != 0 {
		t.Fatalf("list all comments: %+v %v", all, err)
	}
	if _, err := store.GetComment(ctx, "comment-1"); err != nil {
		t.Fatalf("get comment: %v", err)
	}
	edited, err := store.UpdateComment(ctx, "comment-1", "edited")
	if err != nil || edited.Content != "edited" {
		t.Fatalf("update comment: %+v %v", edited, err)
	}
	if err := store.DeleteComment(ctx, "comment-1"); err != nil {
		t.Fatalf("delete comment: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsertLike(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`ON CONFLICT \(user_id, post_id\) DO NOTHING`).
		WithArgs(pgxmock.AnyArg(), "user-1", "post-1").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectQuery(`INSERT INTO likes`).
		WithArgs(pgxmock.AnyArg(), "user-1", "post-1").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO likes`).
		WithArgs(pgxmock.AnyArg(), "user-1", "post-1").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "likes_user_post_key"})
	mock.ExpectQuery(`INSERT INTO likes`).
		WithArgs(pgxmock.AnyArg(), "user-1", "gone").
		WillReturnError(&pgconn.PgError{Code: "23503"})
	mock.ExpectQuery(`INSERT INTO likes`).
		WithArgs(pgxmock.AnyArg(), "user-1", "post-1").
		WillReturnError(errContent)

	store := NewStore(mock)
	ctx := context.Background()

	like, created, err := store.InsertLike(ctx, "user-1", "post-1")
	if err != nil || !created || like.ID == "" {
		t.Fatalf("first like: %+v %v %v", like, created, err)
	}
	if _, created, err := store.InsertLike(ctx, "user-1", "post-1"); err != nil || created {
		t.Fatalf("conflict should report not created: %v %v", created, err)
	}
	if _, created, err := store.InsertLike(ctx, "user-1", "post-1"); err != nil || created {
		t.Fatalf("unique violation should report not created: %v %v", created, err)
	}
	if _, _, err := store.InsertLike(ctx, "user-1", "gone"); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, _, err := store.InsertLike(ctx, "user-1", "post-1"); !errors.Is(err, errContent) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteLikeAndCount(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`DELETE FROM likes`).
		WithArgs("user-1", "post-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM likes`).
		WithArgs("user-1", "post-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM likes`).
		WithArgs("post-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))

	store := NewStore(mock)
	ctx := context.Background()
	if removed, err := store.DeleteLike(ctx, "user-1", "post-1"); err != nil || !removed {
		t.Fatalf("delete like: %v %v", removed, err)
	}
	if removed, err := store.DeleteLike(ctx, "user-1", "post-1"); err != nil || removed {
		t.Fatalf("second delete should report not removed: %v %v", removed, err)
	}
	if count, err := store.LikeCount(ctx, "post-1"); err != nil || count != 0 {
		t.Fatalf("like count: %d %v", count, err)
	}
}

func TestListPostsEscapesPatternCharacters(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`WHERE p.title ILIKE \$1 AND p.content ILIKE \$2 AND u.username ILIKE \$3`).
		WithArgs(`%50\%\_off%`, `%\%%`, `%a\\b%`).
		WillReturnRows(pgxmock.NewRows(postColumns))

	posts, err := NewStore(mock).ListPosts(context.Background(), ListFilter{Title: "50%_off", Content: "%", Author: `a\b`})
	if err != nil || len(posts) != 0 {
		t.Fatalf("escaped list: %+v %v", posts, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStoreErrors(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO posts`).
		WithArgs(pgxmock.AnyArg(), "user-1", "", "").
		WillReturnError(errContent)
	mock.ExpectQuery(`ORDER BY p.created_at DESC`).WillReturnError(errContent)
	mock.ExpectQuery(`ANY\(\$1\)`).
		WithArgs([]string{"user-1"}).
		WillReturnError(errContent)
	mock.ExpectExec(`DELETE FROM likes`).
		WithArgs("user-1", "post-1").
		WillReturnError(errContent)

	store := NewStore(mock)
	ctx := context.Background()
	if _, err := store.CreatePost(ctx, Post{AuthorID: "user-1"}); !errors.Is(err, errContent) {
		t.Fatalf("expected create error")
	}
	if _, err := store.ListPosts(ctx, ListFilter{}); !errors.Is(err, errContent) {
		t.Fatalf("expected list error")
	}
	if _, err := store.PostsByAuthors(ctx, []string{"user-1"}); !errors.Is(err, errContent) {
		t.Fatalf("expected feed error")
	}
	if _, err := store.DeleteLike(ctx, "user-1", "post-1"); !errors.Is(err, errContent) {
		t.Fatalf("expected delete like error")
	}
}
