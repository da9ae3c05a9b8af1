package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bilgisen/newsdigest/internal/models"
)

// ErrNotFound is returned when no digest has the requested id
var ErrNotFound = errors.New("digest not found")

var datedID = regexp.MustCompile(`^digest-(\d{4})(\d{2})(\d{2})-[0-9a-f]+$`)

// Storage keeps assembled digests as JSON files under basePath/YYYY/MM/DD
type Storage struct {
	basePath string
	mu       sync.RWMutex
}

func NewStorage(basePath string) (*Storage, error) {
	// Create base directory if it doesn't exist
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &Storage{
		basePath: basePath,
	}, nil
}

// SaveDigest writes a digest to disk and sets its FilePath
func (s *Storage) SaveDigest(ctx context.Context, d *models.Digest) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if d.ID == "" || strings.ContainsAny(d.ID, `/\`) {
		return fmt.Errorf("invalid digest id %q", d.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	date := d.Date
	if date.IsZero() {
		date = time.Now()
	}
	datePath := filepath.Join(s.basePath, date.UTC().Format("2006/01/02"))
	if err := os.MkdirAll(datePath, 0755); err != nil {
		return fmt.Errorf("failed to create date directory: %w", err)
	}

	filePath := filepath.Join(datePath, d.ID+".json")
	d.FilePath = filePath

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal digest: %w", err)
	}

	// write then rename so readers never see a partial file
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write digest file: %w", err)
	}
	if err := os.Rename(tmp, filePath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move digest file: %w", err)
	}

	return nil
}

// GetDigestByID retrieves a digest by its ID
func (s *Storage) GetDigestByID(ctx context.Context, id string) (*models.Digest, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path, err := s.locate(id)
	if err != nil {
		return nil, err
	}
	return readDigest(path)
}

// ListDigests returns a page of digests, newest first. Pages start at 1.
func (s *Storage) ListDigests(ctx context.Context, page, pageSize int) ([]*models.Digest, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type entry struct {
		path    string
		modTime time.Time
	}
	var files []entry
	err := filepath.WalkDir(s.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, entry{path: path, modTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking the path: %w", err)
	}

	// date directories sort lexically; modification time breaks ties within a day
	sort.Slice(files, func(i, j int) bool {
		di, dj := filepath.Dir(files[i].path), filepath.Dir(files[j].path)
		if di != dj {
			return di > dj
		}
		if !files[i].modTime.Equal(files[j].modTime) {
			return files[i].modTime.After(files[j].modTime)
		}
		return files[i].path > files[j].path
	})

	// Apply pagination
	start := (page - 1) * pageSize
	if start >= len(files) {
		return []*models.Digest{}, nil
	}
	end := start + pageSize
	if end > len(files) {
		end = len(files)
	}

	digests := make([]*models.Digest, 0, end-start)
	for _, f := range files[start:end] {
		d, err := readDigest(f.path)
		if err != nil {
			return nil, err
		}
		digests = append(digests, d)
	}
	return digests, nil
}

// DeleteDigest deletes a digest by its ID
func (s *Storage) DeleteDigest(ctx context.Context, id string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.locate(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete digest file: %w", err)
	}
	return nil
}

// locate finds the file for id. Callers hold s.mu.
func (s *Storage) locate(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", ErrNotFound
	}
	name := id + ".json"

	if m := datedID.FindStringSubmatch(id); m != nil {
		path := filepath.Join(s.basePath, m[1], m[2], m[3], name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	var found string
	err := filepath.WalkDir(s.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == name {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("error walking the path: %w", err)
	}
	if found == "" {
		return "", fmt.Errorf("digest %s: %w", id, ErrNotFound)
	}
	return found, nil
}

func readDigest(path string) (*models.Digest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	var d models.Digest
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal digest: %w", err)
	}
	d.FilePath = path
	return &d, nil
}
