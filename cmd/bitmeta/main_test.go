package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/harioms1522/bitmeta/internal/torrent"
)

func TestCreate_RejectsZeroPieceLength(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "f.bin")
	if err := os.WriteFile(in, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "f.torrent")
	err := create(context.Background(), []string{"-piece-length", "0", "-o", out, in})
	if !errors.Is(err, torrent.ErrInvalidPieceLength) {
		t.Fatalf("create error = %v, want ErrInvalidPieceLength", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output written despite invalid piece length: %v", err)
	}
}

func TestCreateAndInfo(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "f.bin")
	if err := os.WriteFile(in, make([]byte, 70000), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "f.torrent")
	args := []string{"-piece-length", "32", "-announce", "http://t/announce", "-o", out, in}
	if err := create(context.Background(), args); err != nil {
		t.Fatalf("create: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	meta, err := torrent.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if meta.Info.Name != "f.bin" || meta.PieceCount() != 3 || meta.Announce != "http://t/announce" {
		t.Errorf("meta = %+v", meta)
	}
	if err := info([]string{out}); err != nil {
		t.Errorf("info: %v", err)
	}
}
