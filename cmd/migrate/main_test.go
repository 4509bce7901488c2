package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestVersionFromFile(t *testing.T) {
	tests := []struct {
		name    string
		want    int64
		wantErr bool
	}{
		{"001_init.up.sql", 1, false},
		{"012_reports_index.up.sql", 12, false},
		{"init.up.sql", 0, true},
		{"abc_init.up.sql", 0, true},
	}
	for _, tt := range tests {
		got, err := versionFromFile(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("versionFromFile(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("versionFromFile(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestCollect_ordersUpFilesOnly(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"010_b.up.sql", "002_a.up.sql", "002_a.down.sql", "README.md"} {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("SELECT 1;"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	got, err := collect(dir)
	if err != nil {
		t.Fatalf("collect() error: %v", err)
	}
	if len(got) != 2 || got[0].file != "002_a.up.sql" || got[1].file != "010_b.up.sql" {
		t.Errorf("unexpected migrations: %+v", got)
	}
}

func TestCollect_duplicateVersion(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"001_a.up.sql", "001_b.up.sql"} {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("SELECT 1;"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := collect(dir); err == nil {
		t.Error("expected duplicate version error")
	}
}

func TestCollect_repositoryMigrations(t *testing.T) {
	got, err := collect(filepath.Join("..", "..", "migrations"))
	if err != nil {
		t.Fatalf("collect() error: %v", err)
	}
	if len(got) == 0 || got[0].version != 1 {
		t.Errorf("expected migrations starting at version 1, got %+v", got)
	}
}
