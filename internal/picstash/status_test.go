package picstash_test

import (
	"errors"
	"testing"
	"time"

	"picstash/internal/picstash"
	"picstash/internal/testutil"
)

func TestLibrary_UpdateStatus(t *testing.T) {
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
	img, err := lib.AddImage("pets", testutil.PNG(t, 8, 8, 1), "cat.png")
	if err != nil {
		t.Fatalf("AddImage() error = %v", err)
	}

	t.Run("persists the new status and bumps updated", func(t *testing.T) {
		clock.Advance(time.Hour)

		updated, err := lib.UpdateStatus("pets", img.ID, "COLLECTION")
		if err != nil {
			t.Fatalf("UpdateStatus() error = %v", err)
		}
		if updated.Status != picstash.StatusCollection {
			t.Errorf("Status = %q, want COLLECTION", updated.Status)
		}
		if !updated.UpdatedAt.After(updated.CreatedAt) {
			t.Errorf("UpdatedAt not bumped: created=%v updated=%v", updated.CreatedAt, updated.UpdatedAt)
		}
		if !updated.CreatedAt.Equal(img.CreatedAt) {
			t.Errorf("CreatedAt changed: %v -> %v", img.CreatedAt, updated.CreatedAt)
		}

		got, err := lib.GetImage("pets", img.ID)
		if err != nil {
			t.Fatalf("GetImage() error = %v", err)
		}
		if got.Status != picstash.StatusCollection {
			t.Errorf("persisted Status = %q, want COLLECTION", got.Status)
		}
	})

	t.Run("reads never bump updated", func(t *testing.T) {
		before, err := lib.GetImage("pets", img.ID)
		if err != nil {
			t.Fatalf("GetImage() error = %v", err)
		}
		clock.Advance(time.Hour)
		after, err := lib.GetImage("pets", img.ID)
		if err != nil {
			t.Fatalf("GetImage() error = %v", err)
		}
		if !after.UpdatedAt.Equal(before.UpdatedAt) {
			t.Errorf("read bumped UpdatedAt: %v -> %v", before.UpdatedAt, after.UpdatedAt)
		}
	})

	t.Run("setting the same status still bumps updated", func(t *testing.T) {
		before, err := lib.GetImage("pets", img.ID)
		if err != nil {
			t.Fatalf("GetImage() error = %v", err)
		}
		clock.Advance(time.Hour)

		updated, err := lib.UpdateStatus("pets", img.ID, string(before.Status))
		if err != nil {
			t.Fatalf("UpdateStatus() error = %v", err)
		}
		if !updated.UpdatedAt.After(before.UpdatedAt) {
			t.Errorf("no-op transition did not bump UpdatedAt")
		}
	})

	t.Run("rejects unknown statuses", func(t *testing.T) {
		_, err := lib.UpdateStatus("pets", img.ID, "TRASH")
		if !errors.Is(err, picstash.ErrInvalidStatus) {
			t.Errorf("UpdateStatus(TRASH) = %v, want ErrInvalidStatus", err)
		}
	})

	t.Run("rejects malformed ids", func(t *testing.T) {
		_, err := lib.UpdateStatus("pets", "not-a-uuid", "INBOX")
		if !errors.Is(err, picstash.ErrInvalidIdentifier) {
			t.Errorf("UpdateStatus(bad id) = %v, want ErrInvalidIdentifier", err)
		}
	})
}

func TestLibrary_BatchUpdateStatus(t *testing.T) {
	lib := testutil.NewTestLibrary(t)
	if _, err := lib.CreateCollection("pets"); err != nil {
		t.Fatalf("CreateCollection() error = %v", err)
	}

	var ids []string
	for i := 0; i < 3; i++ {
		img, err := lib.AddImage("pets", testutil.PNG(t, 8, 8, uint8(i)), "p.png")
		if err != nil {
			t.Fatalf("AddImage() error = %v", err)
		}
		ids = append(ids, img.ID)
	}

	t.Run("failures are isolated per image", func(t *testing.T) {
		missing := "ffffffff-ffff-4fff-bfff-ffffffffffff"
		request := []string{ids[0], missing, "garbage", ids[2]}

		result, err := lib.BatchUpdateStatus("pets", request, "ARCHIVE")
		if err != nil {
			t.Fatalf("BatchUpdateStatus() error = %v", err)
		}

		if len(result.Updates) != len(request) {
			t.Fatalf("len(Updates) = %d, want %d", len(result.Updates), len(request))
		}
		for i, u := range result.Updates {
			if u.ImageID != request[i] {
				t.Errorf("Updates[%d].ImageID = %q, want %q (order must be preserved)", i, u.ImageID, request[i])
			}
		}

		if result.Updates[0].Err != nil || result.Updates[3].Err != nil {
			t.Errorf("valid ids failed: %v, %v", result.Updates[0].Err, result.Updates[3].Err)
		}
		if !errors.Is(result.Updates[1].Err, picstash.ErrImageNotFound) {
			t.Errorf("Updates[1].Err = %v, want ErrImageNotFound", result.Updates[1].Err)
		}
		if !errors.Is(result.Updates[2].Err, picstash.ErrInvalidIdentifier) {
			t.Errorf("Updates[2].Err = %v, want ErrInvalidIdentifier", result.Updates[2].Err)
		}
		if result.Succeeded() != 2 || result.Failed() != 2 {
			t.Errorf("succeeded/failed = %d/%d, want 2/2", result.Succeeded(), result.Failed())
		}

		// The siblings of a failing id must have been applied.
		for _, id := range []string{ids[0], ids[2]} {
			got, err := lib.GetImage("pets", id)
			if err != nil {
				t.Fatalf("GetImage() error = %v", err)
			}
			if got.Status != picstash.StatusArchive {
				t.Errorf("image %s status = %q, want ARCHIVE", id, got.Status)
			}
		}
		// The untouched image keeps its status.
		got, err := lib.GetImage("pets", ids[1])
		if err != nil {
			t.Fatalf("GetImage() error = %v", err)
		}
		if got.Status != picstash.StatusInbox {
			t.Errorf("uninvolved image status = %q, want INBOX", got.Status)
		}
	})

	t.Run("an invalid status fails the whole request", func(t *testing.T) {
		_, err := lib.BatchUpdateStatus("pets", ids, "TRASH")
		if !errors.Is(err, picstash.ErrInvalidStatus) {
			t.Errorf("BatchUpdateStatus(TRASH) = %v, want ErrInvalidStatus", err)
		}
	})

	t.Run("a missing collection fails the whole request", func(t *testing.T) {
		_, err := lib.BatchUpdateStatus("nope", ids, "ARCHIVE")
		if !errors.Is(err, picstash.ErrCollectionNotFound) {
			t.Errorf("BatchUpdateStatus(missing collection) = %v, want ErrCollectionNotFound", err)
		}
	})

	t.Run("an empty id list yields an empty result", func(t *testing.T) {
		result, err := lib.BatchUpdateStatus("pets", nil, "ARCHIVE")
		if err != nil {
			t.Fatalf("BatchUpdateStatus() error = %v", err)
		}
		if len(result.Updates) != 0 || result.Succeeded() != 0 || result.Failed() != 0 {
			t.Errorf("empty batch result = %+v", result)
		}
	})
}
