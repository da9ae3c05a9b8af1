package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/bilgisen/newsdigest/internal/models"
)

func sampleDigest() models.Digest {
	date := time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC)
	return models.Digest{
		ID:    "digest-20250310-0a1b2c3d",
		Date:  date,
		Title: "Daily Digest – 2025-03-10",
		Sections: []models.DigestSection{{
			Category: models.LookupCategory("technology"),
			Items: []models.ProcessedItem{{
				ID:              "a1",
				OriginalTitle:   "Chip maker <b>unveils</b> design",
				TranslatedTitle: "芯片制造商发布新设计",
				Summary:         "A short summary of the story.",
				URL:             "https://example.com/chips",
				ImageURL:        "https://example.com/chips.jpg",
				SourceName:      "Example Wire",
				PublishedAt:     date.Add(-time.Hour),
				ImportanceScore: 77,
			}},
		}},
		TotalItemCount: 1,
		CreatedAt:      date,
	}
}

func TestRenderHonorsDirectives(t *testing.T) {
	r := NewRenderer()

	full, err := r.NewDelivery(sampleDigest(), models.RunConfig{Recipient: "a@b.co", IncludeSummary: true, IncludeImages: true})
	if err != nil {
		t.Fatalf("NewDelivery() error = %v", err)
	}
	for _, want := range []string{"芯片制造商发布新设计", "chips.jpg", "A short summary", "Technology"} {
		if !strings.Contains(full.HTML, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
	if !strings.Contains(full.Text, "A short summary") || !strings.Contains(full.Text, "https://example.com/chips") {
		t.Errorf("Text missing content:\n%s", full.Text)
	}
	if full.Subject != "Daily Digest – 2025-03-10" || full.Recipient != "a@b.co" {
		t.Errorf("Subject/Recipient = %q/%q", full.Subject, full.Recipient)
	}

	bare, err := r.NewDelivery(sampleDigest(), models.RunConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(bare.HTML, "chips.jpg") || strings.Contains(bare.HTML, "A short summary") {
		t.Errorf("HTML contains image or summary although both were disabled")
	}
	if strings.Contains(bare.Text, "A short summary") {
		t.Errorf("Text contains summary although it was disabled")
	}
}

func TestRenderEscapesMarkup(t *testing.T) {
	d := sampleDigest()
	d.Sections[0].Items[0].TranslatedTitle = ""
	del, err := NewRenderer().NewDelivery(d, models.RunConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(del.HTML, "<b>unveils</b>") {
		t.Errorf("title markup was not escaped")
	}
	if !strings.Contains(del.Text, "Chip maker <b>unveils</b> design") {
		t.Errorf("text body should fall back to the original title")
	}
}

func TestWebhookSink(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	d, _ := NewRenderer().NewDelivery(sampleDigest(), models.RunConfig{Recipient: "reader@example.com"})
	if err := NewWebhookSink(srv.URL, "tok", time.Second).Deliver(context.Background(), d); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if got.DigestID != "digest-20250310-0a1b2c3d" || got.Recipient != "reader@example.com" || got.TotalItems != 1 {
		t.Errorf("payload = %+v", got)
	}
	if got.HTML == "" || got.Text == "" {
		t.Errorf("payload missing rendered bodies")
	}
}

func TestWebhookSinkFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewWebhookSink(srv.URL, "", time.Second).Deliver(context.Background(), Delivery{Digest: sampleDigest()})
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("client errors should not be retried, got %d calls", calls)
	}
}

type fakePutter struct {
	keys  []string
	types []string
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.keys = append(f.keys, *in.Key)
	f.types = append(f.types, *in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func TestArchiveSink(t *testing.T) {
	putter := &fakePutter{}
	sink := NewArchiveSinkWithClient(putter, "bucket")
	d, _ := NewRenderer().NewDelivery(sampleDigest(), models.RunConfig{})

	if err := sink.Deliver(context.Background(), d); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	want := []string{
		"digests/2025/03/10/digest-20250310-0a1b2c3d.json",
		"digests/2025/03/10/digest-20250310-0a1b2c3d.html",
	}
	if strings.Join(putter.keys, ",") != strings.Join(want, ",") {
		t.Errorf("keys = %v; want %v", putter.keys, want)
	}
	if putter.types[0] != "application/json" {
		t.Errorf("content type = %q", putter.types[0])
	}

	failing := NewArchiveSinkWithClient(&fakePutter{err: errors.New("access denied")}, "bucket")
	if err := failing.Deliver(context.Background(), d); err == nil {
		t.Errorf("expected error from failing bucket")
	}
}

type recordingSink struct {
	name  string
	err   error
	calls int
}

func (s *recordingSink) Name() string { return s.name }
func (s *recordingSink) Deliver(ctx context.Context, d Delivery) error {
	s.calls++
	return s.err
}

func TestMulti(t *testing.T) {
	if err := NewMulti().Deliver(context.Background(), Delivery{}); !errors.Is(err, ErrNoSinks) {
		t.Errorf("empty Multi error = %v; want ErrNoSinks", err)
	}

	boom := errors.New("smtp down")
	ok := &recordingSink{name: "ok"}
	bad := &recordingSink{name: "bad", err: boom}
	after := &recordingSink{name: "after"}
	m := NewMulti(ok, nil, bad, after, LogSink{})

	err := m.Deliver(context.Background(), Delivery{Digest: sampleDigest()})
	if !errors.Is(err, boom) {
		t.Errorf("Deliver() error = %v; want wrapped %v", err, boom)
	}
	if ok.calls != 1 || bad.calls != 1 || after.calls != 1 {
		t.Errorf("every sink should be tried once: %d %d %d", ok.calls, bad.calls, after.calls)
	}
	if got := strings.Join(m.Sinks(), ","); got != "ok,bad,after,log" {
		t.Errorf("Sinks() = %q", got)
	}
}
