package aggregates

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/lecture-feedback-backend/internal/domain/aggregates"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/dbctx"
)

// CASGuard holds the compare-and-set updates used for lecture heads and
// suggestion status. A false result means another writer got there first.
type CASGuard struct {
	db *gorm.DB
}

func NewCASGuard(db *gorm.DB) CASGuard {
	return CASGuard{db: db}
}

// UpdateByVersion moves a versioned row (lecture_head) forward only when it
// still holds expectedVersion.
func (g CASGuard) UpdateByVersion(dbc dbctx.Context, table string, id uuid.UUID, expectedVersion int, updates map[string]any) (bool, error) {
	if expectedVersion < 0 {
		return false, ValidationError("expectedVersion must be >= 0")
	}
	return g.guarded(dbc, table, id, "version = ?", expectedVersion, updates)
}

// UpdateByStatus changes a row only while its status is one of
// allowedStatuses.
func (g CASGuard) UpdateByStatus(dbc dbctx.Context, table string, id uuid.UUID, allowedStatuses []string, updates map[string]any) (bool, error) {
	if len(allowedStatuses) == 0 {
		return false, ValidationError("allowedStatuses must not be empty")
	}
	return g.guarded(dbc, table, id, "status IN ?", allowedStatuses, updates)
}

func (g CASGuard) guarded(dbc dbctx.Context, table string, id uuid.UUID, cond string, arg any, updates map[string]any) (bool, error) {
	if dbc.Tx == nil && g.db == nil {
		return false, ValidationError("missing db transaction context")
	}
	table = strings.TrimSpace(table)
	if table == "" || id == uuid.Nil {
		return false, ValidationError("table and id are required for a guarded update")
	}
	res := dbc.DB(g.db).Table(table).Where("id = ?", id).Where(cond, arg).Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func RequireCASSuccess(ok bool, message string) error {
	if ok {
		return nil
	}
	return ConflictError(message)
}

// RequireStatusAllowed fails with invalid_transition when current is not
// one of allowed.
func RequireStatusAllowed(op, current string, allowed ...string) error {
	if len(allowed) == 0 {
		return ValidationError("allowed statuses cannot be empty")
	}
	current = strings.TrimSpace(current)
	for _, s := range allowed {
		if strings.EqualFold(current, strings.TrimSpace(s)) {
			return nil
		}
	}
	return domainagg.Errorf(domainagg.CodeInvalidTransition, op, "status %q does not allow this transition", current)
}

// RequireVersionMatch reports a stale head as a conflict.
func RequireVersionMatch(current, expected int) error {
	if expected < 0 {
		return ValidationError("expected version must be >= 0")
	}
	if current != expected {
		return ConflictError(fmt.Sprintf("version mismatch: current=%d expected=%d", current, expected))
	}
	return nil
}
