package cleanup

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

// fakeResult はsql.Resultのテスト実装。
type fakeResult struct {
	rowsAffected int64
	rowsErr      error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rowsAffected, r.rowsErr }

// mockExecutor は実行されたクエリを記録するExecutor。
type mockExecutor struct {
	query  string
	result sql.Result
	err    error
}

func (m *mockExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	m.query = query
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestCleanupJob_Run_DeletesExpiredSessions(t *testing.T) {
	executor := &mockExecutor{result: fakeResult{rowsAffected: 3}}
	job := NewCleanupJob(executor, newTestLogger())

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if !strings.Contains(executor.query, "DELETE FROM sessions") {
		t.Errorf("query = %q, want a delete on sessions", executor.query)
	}
	if !strings.Contains(executor.query, "expires_at < now()") {
		t.Errorf("query = %q, want an expiry condition", executor.query)
	}
}

func TestCleanupJob_Run_NothingToDelete_Succeeds(t *testing.T) {
	executor := &mockExecutor{result: fakeResult{rowsAffected: 0}}
	job := NewCleanupJob(executor, newTestLogger())

	if err := job.Run(context.Background()); err != nil {
		t.Errorf("Run should be idempotent with no expired sessions: %v", err)
	}
}

func TestCleanupJob_Run_ExecError_ReturnsError(t *testing.T) {
	executor := &mockExecutor{err: errors.New("db down")}
	job := NewCleanupJob(executor, newTestLogger())

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("Run should return an error when the delete fails")
	}
}

func TestCleanupJob_Run_RowsAffectedError_ReturnsError(t *testing.T) {
	executor := &mockExecutor{result: fakeResult{rowsErr: errors.New("not supported")}}
	job := NewCleanupJob(executor, newTestLogger())

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("Run should return an error when RowsAffected fails")
	}
}
