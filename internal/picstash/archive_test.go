package picstash_test

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"picstash/internal/picstash"
	"picstash/internal/testutil"
)

// readArchive drains an export and opens it as a ZIP, checking that the
// reported size matches the actual stream length.
func readArchive(t *testing.T, export *picstash.Export) *zip.Reader {
	t.Helper()
	defer export.Close()

	data, err := io.ReadAll(export)
	if err != nil {
		t.Fatalf("reading export stream: %v", err)
	}
	if int64(len(data)) != export.Size {
		t.Fatalf("export Size = %d, stream has %d bytes", export.Size, len(data))
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("opening export as zip: %v", err)
	}
	return zr
}

func entryNames(zr *zip.Reader) []string {
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

func TestLibrary_ExportArchive(t *testing.T) {
	root, opts := testutil.LibraryOptions(t)
	clock := opts.Clock.(*testutil.StubClock)

	lib, err := picstash.NewLibrary(root, opts)
	if err != nil {
		t.Fatalf("NewLibrary() error = %v", err)
	}
	defer lib.Close()

	if _, err := lib.CreateCollection("vacation-photos"); err != nil {
		t.Fatalf("CreateCollection() error = %v", err)
	}

	beach := testutil.PNG(t, 32, 24, 1)
	beachImg, err := lib.AddImage("vacation-photos", beach, "beach.png")
	if err != nil {
		t.Fatalf("AddImage() error = %v", err)
	}
	clock.Advance(time.Minute)
	sunsetImg, err := lib.AddImage("vacation-photos", testutil.PNG(t, 32, 24, 2), "sunset.png")
	if err != nil {
		t.Fatalf("AddImage() error = %v", err)
	}

	t.Run("bundles originals under their filenames", func(t *testing.T) {
		export, err := lib.ExportArchive("vacation-photos", []string{beachImg.ID, sunsetImg.ID}, "trip")
		if err != nil {
			t.Fatalf("ExportArchive() error = %v", err)
		}
		if export.Filename != "trip.zip" {
			t.Errorf("Filename = %q, want trip.zip", export.Filename)
		}

		zr := readArchive(t, export)
		got := entryNames(zr)
		want := []string{"beach.png", "sunset.png"}
		if len(got) != len(want) {
			t.Fatalf("entries = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("entry[%d] = %q, want %q", i, got[i], want[i])
			}
		}

		// Payload is stored untouched.
		rc, err := zr.File[0].Open()
		if err != nil {
			t.Fatalf("opening entry: %v", err)
		}
		payload, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("reading entry: %v", err)
		}
		if !bytes.Equal(payload, beach) {
			t.Error("archived bytes differ from the original")
		}
	})

	t.Run("repeated ids are included once", func(t *testing.T) {
		export, err := lib.ExportArchive("vacation-photos",
			[]string{beachImg.ID, beachImg.ID, beachImg.ID}, "dupes")
		if err != nil {
			t.Fatalf("ExportArchive() error = %v", err)
		}
		zr := readArchive(t, export)
		if len(zr.File) != 1 {
			t.Errorf("entries = %v, want a single beach.png", entryNames(zr))
		}
	})

	t.Run("an empty request is rejected", func(t *testing.T) {
		_, err := lib.ExportArchive("vacation-photos", nil, "empty")
		if !errors.Is(err, picstash.ErrEmptyRequest) {
			t.Errorf("ExportArchive(no ids) = %v, want ErrEmptyRequest", err)
		}
	})

	t.Run("one unknown id fails the whole export", func(t *testing.T) {
		missing := "ffffffff-ffff-4fff-bfff-ffffffffffff"
		_, err := lib.ExportArchive("vacation-photos", []string{beachImg.ID, missing}, "partial")
		if !errors.Is(err, picstash.ErrImageNotFound) {
			t.Errorf("ExportArchive(unknown id) = %v, want ErrImageNotFound", err)
		}
	})

	t.Run("archive names follow the safe-filename rules", func(t *testing.T) {
		_, err := lib.ExportArchive("vacation-photos", []string{beachImg.ID}, "bad name!")
		if !errors.Is(err, picstash.ErrInvalidArchiveName) {
			t.Errorf("ExportArchive(bad name) = %v, want ErrInvalidArchiveName", err)
		}
	})
}

func TestLibrary_ExportArchive_collisions(t *testing.T) {
	root, opts := testutil.LibraryOptions(t)
	clock := opts.Clock.(*testutil.StubClock)

	lib, err := picstash.NewLibrary(root, opts)
	if err != nil {
		t.Fatalf("NewLibrary() error = %v", err)
	}
	defer lib.Close()

	if _, err := lib.CreateCollection("pets"); err != nil {
		t.Fatalf("CreateCollection() error = %v", err)
	}

	// Three distinct images sharing the upload filename, created at
	// distinct times.
	var ids []string
	for i := 0; i < 3; i++ {
		img, err := lib.AddImage("pets", testutil.PNG(t, 16, 16, uint8(i)), "cat.png")
		if err != nil {
			t.Fatalf("AddImage() error = %v", err)
		}
		ids = append(ids, img.ID)
		clock.Advance(time.Minute)
	}
	unique, err := lib.AddImage("pets", testutil.PNG(t, 16, 16, 9), "dog.png")
	if err != nil {
		t.Fatalf("AddImage() error = %v", err)
	}

	// Request newest-first; suffixes still follow creation order.
	export, err := lib.ExportArchive("pets", []string{ids[2], unique.ID, ids[0], ids[1]}, "mixed")
	if err != nil {
		t.Fatalf("ExportArchive() error = %v", err)
	}
	zr := readArchive(t, export)

	// Entry order mirrors the deduplicated request order.
	want := []string{"cat_003.png", "dog.png", "cat_001.png", "cat_002.png"}
	got := entryNames(zr)
	if len(got) != len(want) {
		t.Fatalf("entries = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
