package db

import (
	"fmt"
	"testing"

	"github.com/yungbote/lecture-feedback-backend/internal/domain"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/logger"
)

func TestAutoMigrateAllSQLite(t *testing.T) {
	svc, err := NewSQLiteService(logger.Nop(), fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrateAll(svc.DB()); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	for _, m := range domain.Models() {
		if !svc.DB().Migrator().HasTable(m) {
			t.Fatalf("missing table for %T", m)
		}
	}
}

func TestWithSQLitePragmas(t *testing.T) {
	cases := map[string]string{
		"app.db":                   "app.db?_busy_timeout=5000",
		"file:x?mode=memory":       "file:x?mode=memory&_busy_timeout=5000",
		"file:x?_busy_timeout=100": "file:x?_busy_timeout=100",
	}
	for in, want := range cases {
		if got := withSQLitePragmas(in); got != want {
			t.Fatalf("withSQLitePragmas(%q): want=%q got=%q", in, want, got)
		}
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(logger.Nop(), "mysql", ""); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
