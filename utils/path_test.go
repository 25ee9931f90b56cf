package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsPathWithin(t *testing.T) {
	root := t.TempDir()
	child := filepath.Join(root, "core", "panic.c")
	outside := filepath.Join(filepath.Dir(root), "outside.c")

	if !IsPathWithin(child, []string{root}) {
		t.Fatalf("expected %s to be within %s", child, root)
	}
	if !IsPathWithin(root, []string{root}) {
		t.Fatal("a root is within itself")
	}
	if IsPathWithin(outside, []string{root}) {
		t.Fatalf("did not expect %s to be within %s", outside, root)
	}
}

func TestRootGuardMultipleRoots(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	inB := filepath.Join(rootB, "nested", "file.c")

	guard := NewRootGuard([]string{rootA, rootB})
	if !guard.Contains(inB) {
		t.Fatalf("expected guard to include path under second root")
	}
	if guard.Contains(filepath.Dir(rootA)) {
		t.Fatal("the parent of a root is outside")
	}
}

func TestRootGuardFollowsSymlinks(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	target := filepath.Join(outside, "secret.c")
	if err := os.WriteFile(target, []byte("int s;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(root, "link.c")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	if NewRootGuard([]string{root}).Contains(link) {
		t.Fatal("a link leaving the root must not be considered inside it")
	}
}
