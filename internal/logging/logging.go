// Package logging writes the per-session request journal and console logs.
package logging

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Event types recorded in the journal.
const (
	EventRequest = "request"
	EventSession = "session"
)

// Event is one line of the request journal.
type Event struct {
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	Op         string    `json:"op,omitempty"`
	Method     string    `json:"method,omitempty"`
	Path       string    `json:"path,omitempty"`
	Status     int       `json:"status,omitempty"`
	DurationMS int64     `json:"duration_ms,omitempty"`
	TaskID     int       `json:"task_id,omitempty"`
	Error      string    `json:"error,omitempty"`
	Message    string    `json:"message,omitempty"`
}

// Journal records events.
type Journal interface {
	Record(event Event) error
}

// Discard is a Journal that drops every event.
var Discard Journal = discardJournal{}

type discardJournal struct{}

func (discardJournal) Record(Event) error { return nil }

// MultiJournal records to several journals, stopping at the first error.
type MultiJournal struct {
	journals []Journal
}

// NewMultiJournal creates a journal that fans out to all given journals.
func NewMultiJournal(journals ...Journal) *MultiJournal {
	return &MultiJournal{journals: journals}
}

// Record writes the event to every journal.
func (m *MultiJournal) Record(event Event) error {
	for _, j := range m.journals {
		if err := j.Record(event); err != nil {
			return err
		}
	}
	return nil
}

// StreamJournal writes events as JSON lines to an io.Writer.
type StreamJournal struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStreamJournal creates a journal writing JSONL to w.
func NewStreamJournal(w io.Writer) *StreamJournal {
	return &StreamJournal{w: w}
}

// Record writes a single JSON line. Safe for concurrent use.
func (s *StreamJournal) Record(event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal journal event: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.w.Write(data)
	return err
}

// SessionLog manages the per-session journal file.
type SessionLog struct {
	Dir       string
	SessionID string
	LogPath   string
	file      *os.File
	*StreamJournal
}

// NewSessionLog creates the endpoint log directory and a fresh JSONL file
// for this session.
func NewSessionLog(baseDir, baseURL string) (*SessionLog, error) {
	logDir, err := FindLogDir(baseDir, baseURL)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	id := sessionID()
	logPath := filepath.Join(logDir, fmt.Sprintf("%s.jsonl", id))
	file, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	return &SessionLog{
		Dir:           logDir,
		SessionID:     id,
		LogPath:       logPath,
		file:          file,
		StreamJournal: NewStreamJournal(file),
	}, nil
}

// Close closes the log file.
func (s *SessionLog) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	return s.file.Close()
}

// FindLogDir returns the journal directory used for an API endpoint.
func FindLogDir(baseDir, baseURL string) (string, error) {
	if baseDir == "" {
		return "", fmt.Errorf("log base dir is empty")
	}
	return filepath.Join(resolveBaseDir(baseDir), endpointSlug(baseURL)), nil
}

func resolveBaseDir(baseDir string) string {
	if filepath.IsAbs(baseDir) {
		return filepath.Clean(baseDir)
	}
	if abs, err := filepath.Abs(baseDir); err == nil {
		return abs
	}
	return filepath.Clean(baseDir)
}

// endpointSlug names the log directory after the API host plus a short
// hash of the full base URL, so two endpoints on one host stay apart.
func endpointSlug(baseURL string) string {
	host := baseURL
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return fmt.Sprintf("%s-%s", slugify(host), hashPath(strings.TrimRight(baseURL, "/")))
}

func slugify(input string) string {
	if strings.TrimSpace(input) == "" {
		return "endpoint"
	}

	var b strings.Builder
	lastUnderscore := false
	for i := 0; i < len(input); i++ {
		c := input[i]
		valid := (c >= 'A' && c <= 'Z') ||
			(c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') ||
			c == '.' || c == '_' || c == '-'
		if !valid {
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		}
		b.WriteByte(c)
		lastUnderscore = false
	}

	slug := strings.Trim(b.String(), "_")
	if slug == "" {
		return "endpoint"
	}
	return slug
}

func hashPath(input string) string {
	sum := sha1.Sum([]byte(input))
	return hex.EncodeToString(sum[:])[:8]
}

func sessionID() string {
	return fmt.Sprintf("%s-%d", time.Now().UTC().Format("20060102-150405"), os.Getpid())
}

// FindLatestLog finds the latest JSONL log file in a directory.
func FindLatestLog(logDir string) (string, error) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read log dir: %w", err)
	}

	var latest string
	var latestTime time.Time

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".jsonl") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latest = filepath.Join(logDir, name)
		}
	}

	return latest, nil
}

// TailLog tails a log file to a writer, optionally following.
func TailLog(w io.Writer, path string, n int, follow bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if n > 0 {
		if err := tailSeek(file, n); err != nil {
			return fmt.Errorf("seek to tail position: %w", err)
		}
	}

	if follow {
		return tailFollow(w, file)
	}

	_, err = io.Copy(w, file)
	return err
}

// tailSeek seeks to a position that shows approximately the last n lines.
func tailSeek(file *os.File, n int) error {
	const avgLineLength = 160

	stat, err := file.Stat()
	if err != nil {
		return err
	}

	size := stat.Size()
	if size < avgLineLength*int64(n) {
		_, err = file.Seek(0, io.SeekStart)
		return err
	}

	offset := size - int64(n*avgLineLength)
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return err
	}

	// Discard partial first line
	buf := make([]byte, 1)
	for {
		if _, err := file.Read(buf); err != nil {
			return nil
		}
		if buf[0] == '\n' {
			return nil
		}
	}
}

// tailFollow follows a file like tail -f.
func tailFollow(w io.Writer, file *os.File) error {
	for {
		if _, err := io.Copy(w, file); err != nil {
			return err
		}
		time.Sleep(100 * time.Millisecond)
	}
}
