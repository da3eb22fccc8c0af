package database

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "unique violation",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "books_sku_key"},
			want: true,
		},
		{
			name: "wrapped unique violation",
			err:  fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}),
			want: true,
		},
		{
			name: "other postgres error",
			err:  &pgconn.PgError{Code: "23503"},
			want: false,
		},
		{
			name: "plain error",
			err:  errors.New("connection refused"),
			want: false,
		},
		{
			name: "nil",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}

func TestCalculateNextRetryTime(t *testing.T) {
	t.Run("exponential backoff", func(t *testing.T) {
		before := time.Now()

		first := calculateNextRetryTime(0)
		third := calculateNextRetryTime(2)

		assert.WithinDuration(t, before.Add(1*time.Second), first, 200*time.Millisecond)
		assert.WithinDuration(t, before.Add(4*time.Second), third, 200*time.Millisecond)
	})

	t.Run("capped at five minutes", func(t *testing.T) {
		before := time.Now()

		capped := calculateNextRetryTime(20)

		assert.WithinDuration(t, before.Add(300*time.Second), capped, 200*time.Millisecond)
	})
}
