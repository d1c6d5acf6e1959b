package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrationURL(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{in: "postgres://u:p@localhost:5432/db?sslmode=disable", expected: "pgx5://u:p@localhost:5432/db?sslmode=disable"},
		{in: "postgresql://u:p@db:5432/shop", expected: "pgx5://u:p@db:5432/shop"},
		{in: "pgx5://u:p@db/shop", expected: "pgx5://u:p@db/shop"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, migrationURL(tt.in))
		})
	}
}

func TestMigrationFiles_Embedded(t *testing.T) {
	entries, err := migrationFiles.ReadDir("migrations")

	assert.NoError(t, err)
	assert.Len(t, entries, 8)
}
