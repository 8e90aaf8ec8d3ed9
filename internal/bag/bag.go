package bag

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	payloadDir   = "data"
	declaration  = "bagit.txt"
	infoFile     = "bag-info.txt"
	bagitVersion = "1.0"
)

var (
	// ErrDuplicatePath is returned when a logical path is added twice.
	ErrDuplicatePath = errors.New("payload path already in bag")
	// ErrInvalidPath is returned for logical paths that are empty, absolute,
	// or escape the payload directory.
	ErrInvalidPath = errors.New("invalid payload path")
	// ErrInvalidBag is returned when a bag fails validation.
	ErrInvalidBag = errors.New("invalid bag")
)

// Options controls how a new bag is laid out.
type Options struct {
	// Algorithms lists manifest checksum algorithms; sha256 when empty.
	Algorithms []string
	// Info holds additional bag-info.txt tags.
	Info map[string]string
}

// Tag is one bag-info.txt entry.
type Tag struct {
	Key   string
	Value string
}

// Bag is a BagIt directory under construction or opened from disk.
type Bag struct {
	dir        string
	algorithms []string
	payload    map[string]struct{}
	info       []Tag
	now        func() time.Time
}

// Create initializes an empty bag at dir. The directory may already exist
// but must not already contain a bag declaration.
func Create(dir string, opts Options) (*Bag, error) {
	algorithms, err := normalizeAlgorithms(opts.Algorithms)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(dir, declaration)); err == nil {
		return nil, fmt.Errorf("create bag: %s already contains %s", dir, declaration)
	}
	if err := os.MkdirAll(filepath.Join(dir, payloadDir), 0o755); err != nil {
		return nil, fmt.Errorf("create payload directory: %w", err)
	}
	content := fmt.Sprintf("BagIt-Version: %s\nTag-File-Character-Encoding: UTF-8\n", bagitVersion)
	if err := os.WriteFile(filepath.Join(dir, declaration), []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("write bag declaration: %w", err)
	}

	b := &Bag{
		dir:        dir,
		algorithms: algorithms,
		payload:    make(map[string]struct{}),
		now:        time.Now,
	}
	keys := make([]string, 0, len(opts.Info))
	for key := range opts.Info {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		b.SetInfo(key, opts.Info[key])
	}
	return b, nil
}

// Open loads an existing bag, reading its payload list from the manifests.
func Open(dir string) (*Bag, error) {
	if _, err := os.Stat(filepath.Join(dir, declaration)); err != nil {
		return nil, fmt.Errorf("%w: %s: missing %s", ErrInvalidBag, dir, declaration)
	}
	manifests, err := filepath.Glob(filepath.Join(dir, "manifest-*.txt"))
	if err != nil {
		return nil, fmt.Errorf("list manifests: %w", err)
	}
	b := &Bag{dir: dir, payload: make(map[string]struct{}), now: time.Now}
	for _, manifest := range manifests {
		alg := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(manifest), "manifest-"), ".txt")
		if _, err := newHash(alg); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidBag, err)
		}
		b.algorithms = append(b.algorithms, alg)
		entries, err := readManifest(manifest)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			b.payload[strings.TrimPrefix(entry.path, payloadDir+"/")] = struct{}{}
		}
	}
	if len(b.algorithms) == 0 {
		// Not finalized yet: fall back to the files present in data/.
		b.algorithms = []string{"sha256"}
		files, err := b.walkPayload()
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			b.payload[f] = struct{}{}
		}
	}
	tags, err := readInfo(filepath.Join(dir, infoFile))
	if err != nil {
		return nil, err
	}
	b.info = tags
	return b, nil
}

// Dir returns the bag's root directory.
func (b *Bag) Dir() string {
	return b.dir
}

// Algorithms returns the manifest algorithms in use.
func (b *Bag) Algorithms() []string {
	return append([]string(nil), b.algorithms...)
}

// AddFile copies src into the payload under logical, a slash-separated path
// relative to data/.
func (b *Bag) AddFile(src, logical string) error {
	clean, err := cleanLogicalPath(logical)
	if err != nil {
		return err
	}
	if _, exists := b.payload[clean]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePath, clean)
	}
	target := filepath.Join(b.dir, payloadDir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create payload subdirectory: %w", err)
	}
	if err := copyFile(src, target); err != nil {
		return fmt.Errorf("add %s: %w", clean, err)
	}
	b.payload[clean] = struct{}{}
	return nil
}

// Has reports whether logical is already part of the payload.
func (b *Bag) Has(logical string) bool {
	clean, err := cleanLogicalPath(logical)
	if err != nil {
		return false
	}
	_, ok := b.payload[clean]
	return ok
}

// Files returns the payload's logical paths in sorted order.
func (b *Bag) Files() []string {
	files := make([]string, 0, len(b.payload))
	for f := range b.payload {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// SetInfo appends a bag-info.txt tag. Repeated keys are kept, as BagIt allows.
func (b *Bag) SetInfo(key, value string) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	b.info = append(b.info, Tag{Key: key, Value: strings.TrimSpace(value)})
}

// Info returns the bag-info tags in insertion order.
func (b *Bag) Info() []Tag {
	return append([]Tag(nil), b.info...)
}

// InfoValue returns the first value recorded for key.
func (b *Bag) InfoValue(key string) (string, bool) {
	for _, tag := range b.info {
		if strings.EqualFold(tag.Key, key) {
			return tag.Value, true
		}
	}
	return "", false
}

func cleanLogicalPath(logical string) (string, error) {
	slashed := strings.ReplaceAll(strings.TrimSpace(logical), "\\", "/")
	if slashed == "" || strings.HasPrefix(slashed, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, logical)
	}
	clean := path.Clean(slashed)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, logical)
	}
	return clean, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy data: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}
	return nil
}

func (b *Bag) walkPayload() ([]string, error) {
	root := filepath.Join(b.dir, payloadDir)
	var files []string
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("walk payload: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

func readInfo(p string) ([]Tag, error) {
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open bag info: %w", err)
	}
	defer f.Close()

	var tags []Tag
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if (line[0] == ' ' || line[0] == '\t') && len(tags) > 0 {
			tags[len(tags)-1].Value += " " + strings.TrimSpace(line)
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%w: malformed bag-info line %q", ErrInvalidBag, line)
		}
		tags = append(tags, Tag{Key: strings.TrimSpace(key), Value: strings.TrimSpace(value)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read bag info: %w", err)
	}
	return tags, nil
}
