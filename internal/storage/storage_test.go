package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bilgisen/newsdigest/internal/models"
)

func newDigest(id string, date time.Time) *models.Digest {
	return &models.Digest{
		ID:    id,
		Date:  date,
		Title: "Daily Digest",
		Sections: []models.DigestSection{{
			Category: models.LookupCategory("technology"),
			Items:    []models.ProcessedItem{{ID: "item-1", TranslatedTitle: "hello"}},
		}},
		TotalItemCount: 1,
		CreatedAt:      date,
	}
}

func TestSaveAndGetDigest(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorage() error = %v", err)
	}
	ctx := context.Background()
	date := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	d := newDigest("digest-20250310-0a1b2c3d", date)
	if err := s.SaveDigest(ctx, d); err != nil {
		t.Fatalf("SaveDigest() error = %v", err)
	}
	wantPath := filepath.Join(s.basePath, "2025", "03", "10", "digest-20250310-0a1b2c3d.json")
	if d.FilePath != wantPath {
		t.Errorf("FilePath = %q; want %q", d.FilePath, wantPath)
	}

	got, err := s.GetDigestByID(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetDigestByID() error = %v", err)
	}
	if got.ID != d.ID || got.TotalItemCount != 1 || len(got.Sections) != 1 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Sections[0].Items[0].TranslatedTitle != "hello" {
		t.Errorf("item lost in round trip")
	}
}

func TestGetDigestByIDWithoutDatePrefix(t *testing.T) {
	s, _ := NewStorage(t.TempDir())
	ctx := context.Background()
	d := newDigest("custom-id", time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	if err := s.SaveDigest(ctx, d); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetDigestByID(ctx, "custom-id"); err != nil {
		t.Errorf("GetDigestByID() error = %v", err)
	}
}

func TestGetDigestNotFound(t *testing.T) {
	s, _ := NewStorage(t.TempDir())
	for _, id := range []string{"digest-20250101-deadbeef", "../etc/passwd", ""} {
		_, err := s.GetDigestByID(context.Background(), id)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("GetDigestByID(%q) error = %v; want ErrNotFound", id, err)
		}
	}
}

func TestListDigestsNewestFirst(t *testing.T) {
	s, _ := NewStorage(t.TempDir())
	ctx := context.Background()

	ids := []string{"digest-20250301-aaaaaaaa", "digest-20250305-bbbbbbbb", "digest-20250303-cccccccc"}
	for _, id := range ids {
		date, _ := time.Parse("20060102", id[7:15])
		if err := s.SaveDigest(ctx, newDigest(id, date)); err != nil {
			t.Fatal(err)
		}
	}

	page1, err := s.ListDigests(ctx, 1, 2)
	if err != nil {
		t.Fatalf("ListDigests() error = %v", err)
	}
	if len(page1) != 2 || page1[0].ID != "digest-20250305-bbbbbbbb" || page1[1].ID != "digest-20250303-cccccccc" {
		t.Errorf("page 1 = %v", digestIDs(page1))
	}
	page2, _ := s.ListDigests(ctx, 2, 2)
	if len(page2) != 1 || page2[0].ID != "digest-20250301-aaaaaaaa" {
		t.Errorf("page 2 = %v", digestIDs(page2))
	}
	page3, _ := s.ListDigests(ctx, 3, 2)
	if len(page3) != 0 {
		t.Errorf("page 3 = %v; want empty", digestIDs(page3))
	}
}

func TestDeleteDigest(t *testing.T) {
	s, _ := NewStorage(t.TempDir())
	ctx := context.Background()
	d := newDigest("digest-20250310-0a1b2c3d", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	if err := s.SaveDigest(ctx, d); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteDigest(ctx, d.ID); err != nil {
		t.Fatalf("DeleteDigest() error = %v", err)
	}
	if _, err := os.Stat(d.FilePath); !os.IsNotExist(err) {
		t.Errorf("file still exists after delete")
	}
	if err := s.DeleteDigest(ctx, d.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v; want ErrNotFound", err)
	}
}

func TestSaveDigestCancelled(t *testing.T) {
	s, _ := NewStorage(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.SaveDigest(ctx, newDigest("digest-20250310-00000000", time.Now())); !errors.Is(err, context.Canceled) {
		t.Errorf("SaveDigest() error = %v; want context.Canceled", err)
	}
}

func digestIDs(ds []*models.Digest) []string {
	var ids []string
	for _, d := range ds {
		ids = append(ids, d.ID)
	}
	return ids
}
