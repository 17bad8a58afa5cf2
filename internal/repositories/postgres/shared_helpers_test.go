package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/shikshya-edu/institute-service/internal/repositories"
)

func TestHandleDBError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    error
		wantNil bool
	}{
		{
			name:    "nil passes through",
			err:     nil,
			wantNil: true,
		},
		{
			name: "record not found maps to ErrNotFound",
			err:  gorm.ErrRecordNotFound,
			want: repositories.ErrNotFound,
		},
		{
			name: "duplicated key maps to ErrDuplicate",
			err:  gorm.ErrDuplicatedKey,
			want: repositories.ErrDuplicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := handleDBError(tt.err, "test op")
			if tt.wantNil {
				if got != nil {
					t.Errorf("expected nil, got %v", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Errorf("expected %v in chain, got %v", tt.want, got)
			}
		})
	}
}

// The driver only yields gorm.ErrDuplicatedKey when error translation is
// enabled on the gorm.Config, so a raw unique violation must survive the
// full translate-then-map chain.
func TestHandleDBErrorUniqueViolation(t *testing.T) {
	raw := &pgconn.PgError{
		Code:           "23505",
		Message:        "duplicate key value violates unique constraint",
		ConstraintName: "idx_users_email",
	}

	translated := pgdriver.Dialector{}.Translate(raw)
	if !errors.Is(translated, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected driver to translate 23505 to gorm.ErrDuplicatedKey, got %v", translated)
	}

	got := handleDBError(translated, "create user")
	if !repositories.IsDuplicateError(got) {
		t.Errorf("expected duplicate taxonomy error, got %v", got)
	}
}

func TestHandleDBErrorWrapsUnknown(t *testing.T) {
	cause := errors.New("connection refused")
	got := handleDBError(cause, "list users")
	if !errors.Is(got, cause) {
		t.Errorf("expected original error in chain, got %v", got)
	}
	if repositories.IsNotFoundError(got) || repositories.IsDuplicateError(got) {
		t.Errorf("unknown error should not map to a taxonomy error: %v", got)
	}
}
