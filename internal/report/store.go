package report

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const slugMaxLen = 48

// contextBudget caps the characters of stored data folded into a chat
// context. It tracks the model context window with headroom for the
// conversation itself.
const contextBudget = 400_000

const truncationMarker = "\n\n[Additional records truncated]"

// Report is one saved run: the rendered markdown plus the raw data it was
// rendered from.
type Report struct {
	Title    string    `json:"title"`
	Query    string    `json:"query,omitempty"`
	SavedAt  time.Time `json:"saved_at"`
	Markdown string    `json:"-"`
	Data     any       `json:"data,omitempty"`
}

// Store persists reports under a directory as <slug>_<timestamp>.md plus a
// .json sidecar with the raw data.
type Store struct {
	dir    string
	logger *log.Logger

	// now is injectable for tests.
	now func() time.Time
}

// NewStore creates a store rooted at dir. The directory is created on first
// save.
func NewStore(dir string) *Store {
	return &Store{
		dir:    dir,
		logger: log.New(log.Writer(), "[REPORT] ", log.LstdFlags),
		now:    time.Now,
	}
}

// Save writes the report pair and returns the markdown path.
func (s *Store) Save(r Report) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}
	r.SavedAt = s.now()
	base := fmt.Sprintf("%s_%s", Slugify(r.Title), r.SavedAt.Format("20060102_150405"))
	mdPath := filepath.Join(s.dir, base+".md")

	if err := os.WriteFile(mdPath, []byte(r.Markdown), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	sidecar, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report data: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, base+".json"), sidecar, 0o644); err != nil {
		return "", fmt.Errorf("write report data: %w", err)
	}
	s.logger.Printf("saved report %s", mdPath)
	return mdPath, nil
}

// List returns the markdown paths of saved reports, newest first.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read reports dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, e.Name()))
	}
	// Timestamped names sort chronologically; reverse for newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))
	return paths, nil
}

// Load reads one saved report's markdown.
func (s *Store) Load(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read report: %w", err)
	}
	return string(raw), nil
}

// Latest returns the most recent report's markdown, or "" when none exist.
func (s *Store) Latest() (string, error) {
	paths, err := s.List()
	if err != nil || len(paths) == 0 {
		return "", err
	}
	return s.Load(paths[0])
}

// BuildChatContext folds saved reports into one block for a follow-up chat,
// newest first, stopping at the character budget with a truncation marker.
func (s *Store) BuildChatContext() (string, error) {
	paths, err := s.List()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, path := range paths {
		md, err := s.Load(path)
		if err != nil {
			return "", err
		}
		section := fmt.Sprintf("--- Report: %s ---\n%s\n\n", filepath.Base(path), md)
		if b.Len()+len(section) > contextBudget {
			b.WriteString(truncationMarker)
			break
		}
		b.WriteString(section)
	}
	return b.String(), nil
}

// Slugify lowercases a title into a filesystem-safe stem.
func Slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
		if b.Len() >= slugMaxLen {
			break
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "report"
	}
	return out
}
