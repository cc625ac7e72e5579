package historydb

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gowvp/tally/internal/core/history"
	"github.com/ixugo/goddd/pkg/orm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func generateMockDB() (*gorm.DB, sqlmock.Sqlmock, error) {
	db, mock, err := sqlmock.New()
	if err != nil {
		return nil, nil, err
	}
	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		return nil, nil, err
	}
	return gdb, mock, nil
}

func TestSessionGet(t *testing.T) {
	db, mock, err := generateMockDB()
	if err != nil {
		t.Fatal(err)
	}
	sessionDB := NewDB(db).Session()

	mock.ExpectQuery(`SELECT \* FROM "sessions" WHERE id=\$1 (.+) LIMIT \$2`).
		WithArgs(int64(1), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "duration", "total"}).AddRow(1, 10, 3))

	var out history.Session
	if err := sessionDB.Get(context.Background(), &out, orm.Where("id=?", int64(1))); err != nil {
		t.Fatal(err)
	}
	if out.ID != 1 || out.Duration != 10 || out.Total != 3 {
		t.Fatalf("out = %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal("ExpectationsWereMet err:", err)
	}
}

func TestSessionAdd(t *testing.T) {
	db, mock, err := generateMockDB()
	if err != nil {
		t.Fatal(err)
	}
	sessionDB := NewDB(db).Session()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	in := history.Session{
		CreatedAt: orm.Now(),
		Duration:  5,
		Counts:    history.Counts{"person": 2},
	}
	if err := sessionDB.Add(context.Background(), &in); err != nil {
		t.Fatal(err)
	}
	if in.ID != 7 {
		t.Fatalf("id = %d, want 7", in.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal("ExpectationsWereMet err:", err)
	}
}

func TestSessionCount(t *testing.T) {
	db, mock, err := generateMockDB()
	if err != nil {
		t.Fatal(err)
	}
	sessionDB := NewDB(db).Session()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	total, err := sessionDB.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal("ExpectationsWereMet err:", err)
	}
}
