package envelopes

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const upsertPattern = `INSERT INTO envelopes .* ON CONFLICT \(account_id, id\) DO UPDATE SET .* WHERE envelopes\.modified_at <= EXCLUDED\.modified_at;`

func TestUpsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(upsertPattern).
		WithArgs("n1", "acc1", []byte("ct"), []byte("nonce"), int64(1000), false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), &Envelope{
		ID: "n1", AccountID: "acc1",
		Ciphertext: []byte("ct"), Nonce: []byte("nonce"),
		ModifiedAt: 1000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpsert_StaleWriteIsNoError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	// stored copy is newer; zero rows affected
	mock.ExpectExec(upsertPattern).
		WithArgs("n1", "acc1", []byte("old"), []byte("nonce"), int64(500), false).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Upsert(context.Background(), &Envelope{
		ID: "n1", AccountID: "acc1",
		Ciphertext: []byte("old"), Nonce: []byte("nonce"),
		ModifiedAt: 500,
	})
	if err != nil {
		t.Fatalf("stale upsert must not fail, got %v", err)
	}
}

func TestDelete_TombstoneBindsEmptyPayload(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	// The tombstone row must carry empty byte slices, not NULLs, or the
	// insert violates the NOT NULL payload columns.
	mock.ExpectExec(upsertPattern).
		WithArgs("n1", "acc1", []byte{}, []byte{}, int64(2500), true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	svc := NewService(repo)
	if err := svc.Delete(context.Background(), "acc1", "n1", 2500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO envelopes`).
		WillReturnError(errors.New("db down"))

	err := repo.Upsert(context.Background(), &Envelope{ID: "n1", AccountID: "acc1"})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestListSince(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "account_id", "ciphertext", "nonce", "modified_at", "deleted"}).
		AddRow("n1", "acc1", []byte("ct1"), []byte("no1"), int64(1500), false).
		AddRow("n2", "acc1", []byte{}, []byte{}, int64(2000), true)

	mock.ExpectQuery(`SELECT id, account_id, ciphertext, nonce, modified_at, deleted\s+FROM envelopes\s+WHERE account_id = \$1 AND modified_at > \$2`).
		WithArgs("acc1", int64(1000)).
		WillReturnRows(rows)

	got, err := repo.ListSince(context.Background(), "acc1", 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 envelopes, got %d", len(got))
	}
	if got[0].ID != "n1" || got[0].Deleted {
		t.Fatalf("unexpected first envelope: %+v", got[0])
	}
	if got[1].ID != "n2" || !got[1].Deleted {
		t.Fatalf("unexpected tombstone: %+v", got[1])
	}
}

func TestListSince_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, account_id`).
		WillReturnError(errors.New("db down"))

	_, err := repo.ListSince(context.Background(), "acc1", 0)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
}
