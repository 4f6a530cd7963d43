// Package session persists council conversations as sessions of numbered
// steps on the local filesystem.
//
// Layout under the store root:
//
//	.current                      current session id, plain text
//	s_20250107_153012_4242/       one directory per session
//	  metadata.json               {"created","current_step","last_updated"}
//	  1/                          one directory per step, no leading zeros
//	    query.md draft.md gpt.md  one file per artifact
//	  2/
//	    gpt_crossref.md ...
//
// Step numbers are contiguous and 1-based; artifacts within a step are
// written or overwritten, never deleted, until the session is cleared.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// CurrentMarker is the file at the store root naming the current session.
	CurrentMarker = ".current"

	// MetadataFile is the per-session metadata record.
	MetadataFile = "metadata.json"

	// ArtifactExt is the extension for artifact files.
	ArtifactExt = ".md"

	// FailedPrefix marks a persisted artifact that records a backend
	// failure rather than a response. Context builders treat such
	// artifacts as absent responses.
	FailedPrefix = "[[FAILED]] "
)

// Metadata is the per-session metadata record.
type Metadata struct {
	Created     time.Time `json:"created"`
	CurrentStep int       `json:"current_step"`
	LastUpdated time.Time `json:"last_updated,omitempty"`
}

// StepData is one step's number and full artifact mapping.
type StepData struct {
	Step int
	Data map[string]string
}

// Info summarizes one stored session.
type Info struct {
	ID          string
	Created     time.Time
	CurrentStep int
}

// Store owns the on-disk session representation. All methods take the
// session id explicitly; defaulting to the current session happens in
// Resolve, not inside individual operations.
type Store struct {
	root string
}

// NewStore creates a store rooted at dir. The directory is created lazily
// on first write.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the sessions root directory.
func (s *Store) Root() string {
	return s.root
}

// Path returns the directory for a session id without checking existence.
func (s *Store) Path(id string) string {
	return filepath.Join(s.root, id)
}

// New allocates a fresh session: unique sortable id, step-1 directory,
// metadata with current_step 1, and the current-session marker pointing
// at it.
func (s *Store) New() (string, error) {
	now := time.Now()
	id := fmt.Sprintf("s_%s_%d", now.Format("20060102_150405"), os.Getpid())

	stepDir := filepath.Join(s.Path(id), "1")
	if err := os.MkdirAll(stepDir, 0700); err != nil {
		return "", fmt.Errorf("create session %s: %w", id, err)
	}

	meta := Metadata{Created: now, CurrentStep: 1}
	if err := s.writeMetadata(id, meta); err != nil {
		return "", err
	}

	if err := s.setCurrent(id); err != nil {
		return "", err
	}

	return id, nil
}

// Current reads the current-session marker. Returns "" when no marker
// exists.
func (s *Store) Current() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.root, CurrentMarker))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read current marker: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Resolve returns the session id to operate on: id itself when given,
// otherwise the current session. The session directory must exist.
func (s *Store) Resolve(id string) (string, error) {
	if id == "" {
		current, err := s.Current()
		if err != nil {
			return "", err
		}
		if current == "" {
			return "", ErrNoSession
		}
		id = current
	}

	info, err := os.Stat(s.Path(id))
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return id, nil
}

// CurrentStep reads the persisted step pointer. A missing metadata file
// means step 1.
func (s *Store) CurrentStep(id string) (int, error) {
	meta, err := s.readMetadata(id)
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, err
	}
	if meta.CurrentStep < 1 {
		return 1, nil
	}
	return meta.CurrentStep, nil
}

// NextStep allocates step current+1, creates its directory and updates
// metadata. Safe to call when the metadata file is missing: it is
// re-initialized.
func (s *Store) NextStep(id string) (int, error) {
	current, err := s.CurrentStep(id)
	if err != nil {
		return 0, err
	}
	next := current + 1

	if err := os.MkdirAll(s.stepPath(id, next), 0700); err != nil {
		return 0, fmt.Errorf("create step %d: %w", next, err)
	}

	meta, err := s.readMetadata(id)
	if err != nil {
		if !os.IsNotExist(err) {
			return 0, err
		}
		meta = Metadata{Created: time.Now()}
	}
	meta.CurrentStep = next
	meta.LastUpdated = time.Now()

	if err := s.writeMetadata(id, meta); err != nil {
		return 0, err
	}

	return next, nil
}

// SaveStep writes each non-empty artifact value into the step directory.
// Empty values are skipped; artifacts not mentioned are left untouched.
func (s *Store) SaveStep(id string, step int, data map[string]string) error {
	stepDir := s.stepPath(id, step)
	if err := os.MkdirAll(stepDir, 0700); err != nil {
		return fmt.Errorf("create step %d: %w", step, err)
	}

	for name, content := range data {
		if content == "" {
			continue
		}
		path := filepath.Join(stepDir, name+ArtifactExt)
		if err := atomicWrite(path, []byte(content)); err != nil {
			return fmt.Errorf("write artifact %s: %w", name, err)
		}
	}
	return nil
}

// LoadStep reads all artifacts persisted for a step. A missing step
// directory yields an empty mapping, not an error.
func (s *Store) LoadStep(id string, step int) (map[string]string, error) {
	data := make(map[string]string)

	entries, err := os.ReadDir(s.stepPath(id, step))
	if os.IsNotExist(err) {
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read step %d: %w", step, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ArtifactExt) {
			continue
		}
		content, err := os.ReadFile(filepath.Join(s.stepPath(id, step), name))
		if err != nil {
			return nil, fmt.Errorf("read artifact %s: %w", name, err)
		}
		data[strings.TrimSuffix(name, ArtifactExt)] = string(content)
	}

	return data, nil
}

// Context returns every step of the session in ascending numeric order
// with its full artifact mapping.
func (s *Store) Context(id string) ([]StepData, error) {
	entries, err := os.ReadDir(s.Path(id))
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", id, err)
	}

	var numbers []int
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		n, err := strconv.Atoi(entry.Name())
		if err != nil || n < 1 {
			continue
		}
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	steps := make([]StepData, 0, len(numbers))
	for _, n := range numbers {
		data, err := s.LoadStep(id, n)
		if err != nil {
			return nil, err
		}
		steps = append(steps, StepData{Step: n, Data: data})
	}
	return steps, nil
}

// Clear irrecoverably deletes the session directory and, when it was the
// current session, the current marker. Tolerates a partially missing
// container.
func (s *Store) Clear(id string) error {
	if err := os.RemoveAll(s.Path(id)); err != nil {
		return fmt.Errorf("remove session %s: %w", id, err)
	}

	current, err := s.Current()
	if err != nil {
		return err
	}
	if current == id {
		if err := os.Remove(filepath.Join(s.root, CurrentMarker)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("clear current marker: %w", err)
		}
	}
	return nil
}

// List returns all stored sessions sorted by id. Ids embed their creation
// timestamp, so id order is chronological order.
func (s *Store) List() ([]Info, error) {
	entries, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sessions root: %w", err)
	}

	var infos []Info
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "s_") {
			continue
		}
		info := Info{ID: entry.Name(), CurrentStep: 1}
		if meta, err := s.readMetadata(entry.Name()); err == nil {
			info.Created = meta.Created
			if meta.CurrentStep > 0 {
				info.CurrentStep = meta.CurrentStep
			}
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

func (s *Store) stepPath(id string, step int) string {
	return filepath.Join(s.Path(id), strconv.Itoa(step))
}

func (s *Store) metadataPath(id string) string {
	return filepath.Join(s.Path(id), MetadataFile)
}

func (s *Store) readMetadata(id string) (Metadata, error) {
	var meta Metadata
	data, err := os.ReadFile(s.metadataPath(id))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("parse metadata: %w", err)
	}
	return meta, nil
}

func (s *Store) writeMetadata(id string, meta Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := atomicWrite(s.metadataPath(id), data); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

func (s *Store) setCurrent(id string) error {
	if err := atomicWrite(filepath.Join(s.root, CurrentMarker), []byte(id)); err != nil {
		return fmt.Errorf("write current marker: %w", err)
	}
	return nil
}

// atomicWrite writes to a temp file in the target directory and renames
// into place.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath) //nolint:errcheck // cleanup in error path
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close() //nolint:errcheck // cleanup in error path
		return fmt.Errorf("write content: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close() //nolint:errcheck // cleanup in error path
		return fmt.Errorf("sync file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename to final: %w", err)
	}

	success = true
	return nil
}
