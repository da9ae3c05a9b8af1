package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bilgisen/newsdigest/internal/models"
)

func TestCollectManyIsolatesFailures(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/good.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleRSS))
	})
	mux.HandleFunc("/broken.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not a feed at all"))
	})
	mux.HandleFunc("/missing.xml", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	sources := []models.Source{
		{ID: "good", Name: "Good", EndpointURL: srv.URL + "/good.xml", Category: "technology"},
		{ID: "broken", Name: "Broken", EndpointURL: srv.URL + "/broken.xml"},
		{ID: "missing", Name: "Missing", EndpointURL: srv.URL + "/missing.xml"},
	}

	c := NewCollector(NewFetcher(2*time.Second), NewParser(20, Taxonomy{}), 2)
	items, reports := c.CollectMany(context.Background(), sources)

	if len(items) != 2 {
		t.Fatalf("expected 2 items from the good source, got %d", len(items))
	}
	if len(reports) != 3 {
		t.Fatalf("expected one report per source, got %d", len(reports))
	}
	if reports[0].Error != "" || reports[0].Items != 2 {
		t.Errorf("good source report = %+v", reports[0])
	}
	for _, r := range reports[1:] {
		if r.Error == "" || r.Items != 0 {
			t.Errorf("expected failure report, got %+v", r)
		}
	}
}

func TestFetchTimesOut(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewCollector(NewFetcher(100*time.Millisecond), NewParser(20, Taxonomy{}), 1)
	start := time.Now()
	items := c.Fetch(context.Background(), models.Source{ID: "slow", EndpointURL: srv.URL})
	if len(items) != 0 {
		t.Fatalf("expected no items from a stalled source, got %d", len(items))
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("fetch was not bounded by its timeout: %v", elapsed)
	}
}

type stubGetter struct {
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (s *stubGetter) FetchFeed(ctx context.Context, url string) ([]byte, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	if strings.HasSuffix(url, "/fail") {
		return nil, errors.New("boom")
	}
	return []byte(sampleRSS), nil
}

func TestCollectManyBoundsConcurrency(t *testing.T) {
	t.Parallel()

	getter := &stubGetter{}
	c := NewCollector(getter, NewParser(20, Taxonomy{}), 2)

	var sources []models.Source
	for i := 0; i < 6; i++ {
		url := "https://feeds.example/ok"
		if i == 3 {
			url = "https://feeds.example/fail"
		}
		sources = append(sources, models.Source{ID: string(rune('a' + i)), EndpointURL: url})
	}

	items, reports := c.CollectMany(context.Background(), sources)
	if got := getter.peak.Load(); got > 2 {
		t.Fatalf("peak concurrency %d exceeds worker count 2", got)
	}
	if len(items) != 10 {
		t.Fatalf("expected 5 sources x 2 items, got %d", len(items))
	}
	if reports[3].Error == "" {
		t.Fatalf("expected failing source to be reported")
	}
}
