package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "rill.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestFindRillTomlWalksUp(t *testing.T) {
	root := t.TempDir()
	path := writeManifest(t, root, "[package]\nname = \"demo\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	found, ok, err := findRillToml(nested)
	if err != nil {
		t.Fatalf("findRillToml: %v", err)
	}
	if !ok || found != path {
		t.Fatalf("expected %s, got %s (ok=%v)", path, found, ok)
	}
}

func TestLoadProjectManifest(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `
[package]
name = "demo"

[target]
triple = "x86_64-unknown-linux-gnu"
datalayout = "e-m:e-i64:64"
`)

	manifest, ok, err := loadProjectManifest(root)
	if err != nil {
		t.Fatalf("loadProjectManifest: %v", err)
	}
	if !ok {
		t.Fatalf("manifest should be found")
	}
	if manifest.Config.Package.Name != "demo" {
		t.Fatalf("package name = %q", manifest.Config.Package.Name)
	}
	if manifest.Config.Target.Triple != "x86_64-unknown-linux-gnu" {
		t.Fatalf("target triple = %q", manifest.Config.Target.Triple)
	}
	if manifest.Config.Target.DataLayout != "e-m:e-i64:64" {
		t.Fatalf("target datalayout = %q", manifest.Config.Target.DataLayout)
	}
}

func TestLoadProjectManifestRejectsMissingName(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[package]\n")

	if _, _, err := loadProjectManifest(root); err == nil {
		t.Fatalf("missing [package].name should fail")
	}
}

func TestLoadProjectManifestAbsent(t *testing.T) {
	_, ok, err := loadProjectManifest(t.TempDir())
	if err != nil {
		t.Fatalf("loadProjectManifest: %v", err)
	}
	if ok {
		t.Fatalf("empty directory should have no manifest")
	}
}
