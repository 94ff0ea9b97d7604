package picstash

import (
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"INBOX", "COLLECTION", "ARCHIVE"} {
		s, err := ParseStatus(raw)
		if err != nil {
			t.Errorf("ParseStatus(%q) error = %v", raw, err)
		}
		if string(s) != raw {
			t.Errorf("ParseStatus(%q) = %q", raw, s)
		}
	}

	for _, raw := range []string{"", "inbox", "Inbox", "DELETED", "INBOX "} {
		_, err := ParseStatus(raw)
		if !errors.Is(err, ErrInvalidStatus) {
			t.Errorf("ParseStatus(%q) = %v, want ErrInvalidStatus", raw, err)
		}
	}
}

func TestSplitFilename(t *testing.T) {
	tests := []struct {
		filename string
		wantName string
		wantExt  string
	}{
		{"beach.jpg", "beach", "jpg"},
		{"beach.JPG", "beach", "jpg"},
		{"archive.tar.gz", "archive.tar", "gz"},
		{"noext", "noext", ""},
		{".hidden", ".hidden", ""},
		{"trailingdot.", "trailingdot", ""},
	}

	for _, tt := range tests {
		name, ext := SplitFilename(tt.filename)
		if name != tt.wantName || ext != tt.wantExt {
			t.Errorf("SplitFilename(%q) = (%q, %q), want (%q, %q)",
				tt.filename, name, ext, tt.wantName, tt.wantExt)
		}
	}
}

func TestImage_Filename(t *testing.T) {
	img := &Image{Name: "beach", Extension: "jpg"}
	if got := img.Filename(); got != "beach.jpg" {
		t.Errorf("Filename() = %q, want beach.jpg", got)
	}

	img = &Image{Name: "noext"}
	if got := img.Filename(); got != "noext" {
		t.Errorf("Filename() = %q, want noext", got)
	}
}

func TestImage_Aspect(t *testing.T) {
	img := &Image{Width: 1600, Height: 900}
	if got, want := img.Aspect(), 1600.0/900.0; got != want {
		t.Errorf("Aspect() = %v, want %v", got, want)
	}

	img = &Image{Width: 100, Height: 0}
	if got := img.Aspect(); got != 0 {
		t.Errorf("Aspect() with zero height = %v, want 0", got)
	}
}

func TestListOptions_Normalize(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		opts, err := ListOptions{}.Normalize()
		if err != nil {
			t.Fatalf("Normalize() error = %v", err)
		}
		if opts.OrderBy != OrderByCreated {
			t.Errorf("OrderBy = %q, want %q", opts.OrderBy, OrderByCreated)
		}
		if opts.OrderDirection != OrderAsc {
			t.Errorf("OrderDirection = %q, want %q", opts.OrderDirection, OrderAsc)
		}
		if opts.Limit != MaxListLimit {
			t.Errorf("Limit = %d, want %d", opts.Limit, MaxListLimit)
		}
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		opts, err := ListOptions{
			Status:         "ARCHIVE",
			OrderBy:        OrderByUpdated,
			OrderDirection: OrderDesc,
			Limit:          10,
			Offset:         20,
		}.Normalize()
		if err != nil {
			t.Fatalf("Normalize() error = %v", err)
		}
		if opts.Status != "ARCHIVE" || opts.Limit != 10 || opts.Offset != 20 {
			t.Errorf("Normalize() rewrote explicit values: %+v", opts)
		}
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		invalid := []ListOptions{
			{Status: "UNKNOWN"},
			{OrderBy: "size"},
			{OrderDirection: "sideways"},
			{Limit: -1},
			{Limit: MaxListLimit + 1},
			{Offset: -5},
		}
		for _, opts := range invalid {
			if _, err := opts.Normalize(); !errors.Is(err, ErrInvalidQuery) {
				t.Errorf("Normalize(%+v) = %v, want ErrInvalidQuery", opts, err)
			}
		}
	})
}
