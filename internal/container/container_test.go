package container

import (
	"errors"
	"testing"

	"github.com/tilemap/datafile/internal/wire"
)

func buildMinimal(t *testing.T) []byte {
	t.Helper()
	w := NewWriter()
	w.AddItem(wire.TypeVersion, []byte{1, 0, 0, 0})
	ptr := w.AddData([]byte("hello"))
	if ptr != 0 {
		t.Fatalf("first data pointer = %d, want 0", ptr)
	}
	w.AddItem(wire.TypeInfo, []byte{2, 0, 0, 0})
	return w.Assemble()
}

func TestOpenRoundTrip(t *testing.T) {
	data := buildMinimal(t)
	r, err := Open(data)
	if err != nil {
		t.Fatal(err)
	}
	if r.Count(wire.TypeVersion) != 1 {
		t.Errorf("version count = %d, want 1", r.Count(wire.TypeVersion))
	}
	if r.Count(wire.TypeInfo) != 1 {
		t.Errorf("info count = %d, want 1", r.Count(wire.TypeInfo))
	}
	if r.Count(wire.TypeImage) != 0 {
		t.Errorf("image count = %d, want 0", r.Count(wire.TypeImage))
	}

	body, err := r.Item(wire.TypeVersion, 0)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != string([]byte{1, 0, 0, 0}) {
		t.Errorf("version body = %v", body)
	}

	blob, err := r.Blob(0)
	if err != nil {
		t.Fatal(err)
	}
	if string(blob) != "hello" {
		t.Errorf("blob = %q, want hello", blob)
	}
}

func TestOpenBadMagic(t *testing.T) {
	data := buildMinimal(t)
	corrupted := append([]byte(nil), data...)
	corrupted[0] = 'X'
	if _, err := Open(corrupted); !errors.Is(err, ErrBadMagic) {
		t.Errorf("got %v, want ErrBadMagic", err)
	}
}

func TestItemUnknownKind(t *testing.T) {
	data := buildMinimal(t)
	r, err := Open(data)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Item(wire.TypeSound, 0); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("got %v, want ErrUnknownKind", err)
	}
}

func TestItemOutOfRange(t *testing.T) {
	data := buildMinimal(t)
	r, err := Open(data)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Item(wire.TypeVersion, 1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("got %v, want ErrOutOfRange", err)
	}
}

func TestBlobOutOfRange(t *testing.T) {
	data := buildMinimal(t)
	r, err := Open(data)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Blob(99); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("got %v, want ErrOutOfRange", err)
	}
}

func TestMultipleItemsOfOneKindPreserveOrder(t *testing.T) {
	w := NewWriter()
	w.AddItem(wire.TypeImage, []byte{1})
	w.AddItem(wire.TypeImage, []byte{2})
	w.AddItem(wire.TypeImage, []byte{3})
	data := w.Assemble()

	r, err := Open(data)
	if err != nil {
		t.Fatal(err)
	}
	if r.Count(wire.TypeImage) != 3 {
		t.Fatalf("count = %d, want 3", r.Count(wire.TypeImage))
	}
	for i, want := range []byte{1, 2, 3} {
		body, err := r.Item(wire.TypeImage, i)
		if err != nil {
			t.Fatal(err)
		}
		if len(body) != 1 || body[0] != want {
			t.Errorf("item %d = %v, want [%d]", i, body, want)
		}
	}
}

func TestSwappedMagicAccepted(t *testing.T) {
	data := buildMinimal(t)
	swapped := append([]byte(nil), data...)
	copy(swapped[0:4], magicSwapped)
	if _, err := Open(swapped); err != nil {
		t.Errorf("swapped-magic header should still open: %v", err)
	}
}

func TestMultipleBlobsDecompressIndependently(t *testing.T) {
	w := NewWriter()
	w.AddData([]byte("first"))
	w.AddData([]byte("second, somewhat longer"))
	w.AddData([]byte(""))
	data := w.Assemble()

	r, err := Open(data)
	if err != nil {
		t.Fatal(err)
	}
	if r.NumBlobs() != 3 {
		t.Fatalf("NumBlobs() = %d, want 3", r.NumBlobs())
	}
	want := []string{"first", "second, somewhat longer", ""}
	for i, w := range want {
		got, err := r.Blob(i)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != w {
			t.Errorf("blob %d = %q, want %q", i, got, w)
		}
	}
}
