package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jacinta25/social-media-API/internal/apperror"

	"github.com/pashagolub/pgxmock/v3"
)

var errLedger = errors.New("ledger error")

var notificationColumns = []string{"id", "recipient_id", "actor_id", "username", "verb", "target_type", "target_id", "read", "created_at"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestAppend(t *testing.T) {
	mock := newMock(t)
	now := time.Now()
	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(pgxmock.AnyArg(), "author-1", "actor-1", VerbLiked, TargetPost, "post-1").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "username"}).AddRow(now, "bob"))

	n, err := NewLedger(mock).Append(context.Background(), "author-1", "actor-1", VerbLiked, TargetPost, "post-1")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if n.ID == "" || n.Read || n.Actor != "bob" || n.TargetID != "post-1" {
		t.Fatalf("unexpected notification: %+v", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListForNewestFirst(t *testing.T) {
	mock := newMock(t)
	newer := time.Now()
	older := newer.Add(-time.Minute)
	mock.ExpectQuery(`ORDER BY n.created_at DESC, n.id DESC\s+LIMIT \$2 OFFSET \$3`).
		WithArgs("author-1", DefaultLimit, 0).
		WillReturnRows(pgxmock.NewRows(notificationColumns).
			AddRow("n-2", "author-1", "actor-2", "carol", VerbLiked, TargetPost, "post-1", false, newer).
			AddRow("n-1", "author-1", "actor-1", "bob", VerbLiked, TargetPost, "post-1", true, older))
	mock.ExpectQuery(`FROM notifications n`).
		WithArgs("author-1", MaxLimit, 0).
		WillReturnRows(pgxmock.NewRows(notificationColumns))

	ledger := NewLedger(mock)
	list, err := ledger.ListFor(context.Background(), "author-1", 0, -5)
	if err != nil || len(list) != 2 || list[0].ID != "n-2" {
		t.Fatalf("list: %+v %v", list, err)
	}
	empty, err := ledger.ListFor(context.Background(), "author-1", 1000, 0)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty list: %+v %v", empty, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReadState(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM notifications`).
		WithArgs("author-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec(`UPDATE notifications SET read = true\s+WHERE id = \$1 AND recipient_id = \$2`).
		WithArgs("n-1", "author-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`WHERE id = \$1 AND recipient_id = \$2`).
		WithArgs("n-1", "intruder").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec(`WHERE recipient_id = \$1 AND NOT read`).
		WithArgs("author-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ledger := NewLedger(mock)
	ctx := context.Background()
	if count, err := ledger.UnreadCount(ctx, "author-1"); err != nil || count != 2 {
		t.Fatalf("unread count: %d %v", count, err)
	}
	if err := ledger.MarkRead(ctx, "author-1", "n-1"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if err := ledger.MarkRead(ctx, "intruder", "n-1"); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found for foreign notification, got %v", err)
	}
	if updated, err := ledger.MarkAllRead(ctx, "author-1"); err != nil || updated != 1 {
		t.Fatalf("mark all read: %d %v", updated, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLedgerErrors(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(pgxmock.AnyArg(), "a", "b", VerbLiked, TargetPost, "p").
		WillReturnError(errLedger)
	mock.ExpectQuery(`FROM notifications n`).
		WithArgs("a", 10, 0).
		WillReturnError(errLedger)
	mock.ExpectQuery(`SELECT count`).
		WithArgs("a").
		WillReturnError(errLedger)
	mock.ExpectExec(`UPDATE notifications`).
		WithArgs("n", "a").
		WillReturnError(errLedger)
	mock.ExpectExec(`UPDATE notifications`).
		WithArgs("a").
		WillReturnError(errLedger)

	ledger := NewLedger(mock)
	ctx := context.Background()
	if _, err := ledger.Append(ctx, "a", "b", VerbLiked, TargetPost, "p"); !errors.Is(err, errLedger) {
		t.Fatalf("expected append error")
	}
	if _, err := ledger.ListFor(ctx, "a", 10, 0); !errors.Is(err, errLedger) {
		t.Fatalf("expected list error")
	}
	if _, err := ledger.UnreadCount(ctx, "a"); !errors.Is(err, errLedger) {
		t.Fatalf("expected count error")
	}
	if err := ledger.MarkRead(ctx, "a", "n"); !errors.Is(err, errLedger) {
		t.Fatalf("expected mark read error")
	}
	if _, err := ledger.MarkAllRead(ctx, "a"); !errors.Is(err, errLedger) {
		t.Fatalf("expected mark all error")
	}
}
