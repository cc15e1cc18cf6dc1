package sparse

import (
	"bytes"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"
)

func tmpFile(t *testing.T) *os.File {
	t.Helper()
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestWriteNonSeekable(t *testing.T) {

	var buf bytes.Buffer

	data := make([]byte, 3*pageSz)
	copy(data[pageSz:], []byte("hello"))

	wr := NewWriter(&buf)

	n, err := wr.Write(data)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(data) {
		t.Fatalf("short write: %d", n)
	}
	if !bytes.Equal(buf.Bytes(), data) {
		t.Fatal("data mismatch")
	}
}

func TestZeroRunsSkipped(t *testing.T) {

	data := make([]byte, 8*pageSz)
	if _, err := rand.Read(data[:pageSz]); err != nil {
		t.Fatal(err)
	}
	if _, err := rand.Read(data[5*pageSz : 6*pageSz]); err != nil {
		t.Fatal(err)
	}

	f := tmpFile(t)

	wr := NewWriter(f)

	if _, err := wr.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := wr.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("data mismatch")
	}
}

func TestTrailingZerosSetFileSize(t *testing.T) {

	data := make([]byte, 4*pageSz)
	copy(data, []byte("leading payload"))

	f := tmpFile(t)

	wr := NewWriter(f)

	if _, err := wr.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := wr.Close(); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != int64(len(data)) {
		t.Fatalf("size %d != %d", info.Size(), len(data))
	}
}

func TestUnalignedTail(t *testing.T) {

	data := make([]byte, pageSz+100)
	data[pageSz+50] = 0x7f

	f := tmpFile(t)

	wr := NewWriter(f)

	if _, err := wr.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := wr.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("data mismatch")
	}
}
