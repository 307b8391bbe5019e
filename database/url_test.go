package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructDatabaseURL(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		dbName   string
		expected string
	}{
		{
			name:     "no database name returns base url",
			baseURL:  "postgres://u:p@localhost:5432/arcade",
			dbName:   "",
			expected: "postgres://u:p@localhost:5432/arcade",
		},
		{
			name:     "appends name and sslmode",
			baseURL:  "postgres://u:p@localhost:5432",
			dbName:   "arcade",
			expected: "postgres://u:p@localhost:5432/arcade?sslmode=disable",
		},
		{
			name:     "trailing slash trimmed",
			baseURL:  "postgres://u:p@localhost:5432/",
			dbName:   "arcade",
			expected: "postgres://u:p@localhost:5432/arcade?sslmode=disable",
		},
		{
			name:     "keeps existing query",
			baseURL:  "postgres://u:p@localhost:5432?connect_timeout=5",
			dbName:   "arcade",
			expected: "postgres://u:p@localhost:5432/arcade?connect_timeout=5&sslmode=disable",
		},
		{
			name:     "keeps explicit sslmode",
			baseURL:  "postgres://u:p@db:5432?sslmode=require",
			dbName:   "arcade",
			expected: "postgres://u:p@db:5432/arcade?sslmode=require",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ConstructDatabaseURL(tt.baseURL, tt.dbName))
		})
	}
}
