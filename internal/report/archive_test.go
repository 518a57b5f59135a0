package report

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockArchive(t *testing.T, retain int) (*Archive, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewArchive(db, retain), mock
}

func sampleReport() Report {
	return Report{
		ID:          "4b0f4c1e-6a43-4c77-9a57-8d5d2a4f3f10",
		WeekStart:   "2024-03-11",
		WeekEnd:     "2024-03-17",
		Filename:    "weekly-report-2024-03-11.pdf",
		ContentType: "application/pdf",
		SizeBytes:   8,
		Overview:    json.RawMessage(`{"total_feedback":12}`),
		Data:        []byte("%PDF-1.4"),
		GeneratedAt: time.Date(2024, 3, 17, 14, 0, 0, 0, time.UTC),
	}
}

func TestSaveUpsertsAndPrunes(t *testing.T) {
	archive, mock := newMockArchive(t, 4)
	r := sampleReport()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO weekly_reports")).
		WithArgs(r.ID, "2024-03-11", "2024-03-17", r.Filename, r.ContentType, 8, `{"total_feedback":12}`, r.Data, r.GeneratedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM weekly_reports WHERE week_start < $1")).
		WithArgs("2024-02-12").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	if err := archive.Save(context.Background(), r); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSaveRollsBackOnFailure(t *testing.T) {
	archive, mock := newMockArchive(t, 0)
	r := sampleReport()
	r.Overview = nil

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO weekly_reports")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "{}", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	if err := archive.Save(context.Background(), r); err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestLatest(t *testing.T) {
	archive, mock := newMockArchive(t, 0)
	generated := time.Date(2024, 3, 17, 14, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "week_start", "week_end", "filename", "content_type", "size_bytes", "overview", "generated_at", "data"}).
		AddRow("id-1", time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC),
			"r.pdf", "application/pdf", 8, []byte(`{}`), generated, []byte("%PDF-1.4"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM weekly_reports ORDER BY week_start DESC LIMIT 1")).WillReturnRows(rows)

	r, err := archive.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if r.WeekStart != "2024-03-11" || r.WeekEnd != "2024-03-17" || string(r.Data) != "%PDF-1.4" {
		t.Errorf("report = %+v", r)
	}
}

func TestLatestEmpty(t *testing.T) {
	archive, mock := newMockArchive(t, 0)
	mock.ExpectQuery(regexp.QuoteMeta("FROM weekly_reports")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	r, err := archive.Latest(context.Background())
	if err != nil || r != nil {
		t.Errorf("Latest on empty archive = %+v, %v", r, err)
	}
}

func TestList(t *testing.T) {
	archive, mock := newMockArchive(t, 0)
	cols := []string{"id", "week_start", "week_end", "filename", "content_type", "size_bytes", "overview", "generated_at"}
	rows := sqlmock.NewRows(cols).
		AddRow("b", time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC), "b.pdf", "application/pdf", 10, []byte(`{}`), time.Now()).
		AddRow("a", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), "a.pdf", "application/pdf", 9, []byte(`{}`), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $1")).WithArgs(2).WillReturnRows(rows)

	reports, err := archive.List(context.Background(), 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(reports) != 2 || reports[0].WeekStart != "2024-03-11" || reports[1].WeekStart != "2024-03-04" {
		t.Errorf("reports = %+v", reports)
	}
	if reports[0].Data != nil {
		t.Error("List must not load PDFs")
	}
}
