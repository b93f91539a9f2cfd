package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCollectDocFilesSplitsDiagrams(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"readme.md", "setup.adoc", "notes.txt", "spec.rst",
		"flow.puml", "arch.plantuml", "logo.png", "ignored.go",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	docs, diagrams, err := collectDocFiles(dir)
	if err != nil {
		t.Fatalf("collectDocFiles: %v", err)
	}

	wantDocs := []string{
		filepath.Join(dir, "notes.txt"),
		filepath.Join(dir, "readme.md"),
		filepath.Join(dir, "setup.adoc"),
		filepath.Join(dir, "spec.rst"),
	}
	if diff := cmp.Diff(wantDocs, docs); diff != "" {
		t.Errorf("docs mismatch (-want +got):\n%s", diff)
	}

	wantDiagrams := []string{
		filepath.Join(dir, "arch.plantuml"),
		filepath.Join(dir, "flow.puml"),
		filepath.Join(dir, "logo.png"),
	}
	if diff := cmp.Diff(wantDiagrams, diagrams); diff != "" {
		t.Errorf("diagrams mismatch (-want +got):\n%s", diff)
	}

	// Only text diagram formats become pages
	wantText := []string{
		filepath.Join(dir, "arch.plantuml"),
		filepath.Join(dir, "flow.puml"),
	}
	if diff := cmp.Diff(wantText, textDiagrams(diagrams)); diff != "" {
		t.Errorf("text diagrams mismatch (-want +got):\n%s", diff)
	}
}

func TestDocTitle(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"docs/api-guide.adoc", "Api Guide"},
		{"README.md", "README"},
		{"user_manual.txt", "User Manual"},
		{"flow.puml", "Flow"},
	}
	for _, tc := range cases {
		if got := docTitle(tc.path); got != tc.want {
			t.Errorf("docTitle(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}
