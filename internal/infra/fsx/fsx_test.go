package fsx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func assertNoTemp(t *testing.T, dir, name string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "."+name+".tmp-") {
			t.Fatalf("临时文件未清理：%q", e.Name())
		}
	}
}

func TestWriteFileAtomicReplace_CreatesDirAndFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "DataSets")

	if err := WriteFileAtomicReplace(dir, "IMDB_Top_50_2019.json", []byte("{}")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "IMDB_Top_50_2019.json"))
	if err != nil {
		t.Fatalf("读取文件失败：%v", err)
	}
	if string(b) != "{}" {
		t.Fatalf("内容不一致：%q", string(b))
	}
	assertNoTemp(t, dir, "IMDB_Top_50_2019.json")
}

func TestWriteFileAtomicReplace_Overwrites(t *testing.T) {
	dir := t.TempDir()
	if err := WriteFileAtomicReplace(dir, "a.txt", []byte("old")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if err := WriteFileAtomicReplace(dir, "a.txt", []byte("new")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	b, _ := os.ReadFile(filepath.Join(dir, "a.txt"))
	if string(b) != "new" {
		t.Fatalf("期望覆盖为 new，实际 %q", string(b))
	}
}

func TestWriteFileAtomicReplace_RenameFail_KeepsOld(t *testing.T) {
	dir := t.TempDir()
	if err := WriteFileAtomicReplace(dir, "a.txt", []byte("old")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	old := renameFunc
	renameFunc = func(oldpath, newpath string) error { return os.ErrPermission }
	defer func() { renameFunc = old }()

	if err := WriteFileAtomicReplace(dir, "a.txt", []byte("new")); err == nil {
		t.Fatalf("期望失败，但得到 nil")
	}
	b, _ := os.ReadFile(filepath.Join(dir, "a.txt"))
	if string(b) != "old" {
		t.Fatalf("rename 失败时旧文件应保持不变，实际 %q", string(b))
	}
	assertNoTemp(t, dir, "a.txt")
}

func TestWriteFileAtomicReplace_TargetIsDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "a.txt"), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	err := WriteFileAtomicReplace(dir, "a.txt", []byte("hello"))
	if !IsPathTypeConflict(err) {
		t.Fatalf("期望 PathTypeConflictError，实际：%T %v", err, err)
	}
}
