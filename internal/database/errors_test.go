package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"unique violation", &pq.Error{Code: "23505"}, true},
		{"wrapped unique violation", fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), true},
		{"foreign key violation", &pq.Error{Code: "23503"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := isUniqueViolation(tt.err); got != tt.want {
				t.Errorf("isUniqueViolation(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestNotFound(t *testing.T) {
	t.Parallel()
	if !notFound(fmt.Errorf("scan: %w", sql.ErrNoRows)) {
		t.Error("wrapped sql.ErrNoRows should be not found")
	}
	if notFound(errors.New("other")) {
		t.Error("arbitrary error should not be not found")
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	t.Parallel()
	entries, err := embeddedMigrations.ReadDir("migrations")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no embedded migrations")
	}
	data, err := embeddedMigrations.ReadFile("migrations/" + entries[0].Name())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
		if !containsLine(string(data), marker) {
			t.Errorf("first migration missing %q", marker)
		}
	}
}

func containsLine(s, line string) bool {
	for _, l := range strings.Split(s, "\n") {
		if strings.TrimSpace(l) == line {
			return true
		}
	}
	return false
}
