package bag

import (
	"bufio"
	"crypto/md5"  //nolint:gosec // BagIt manifest algorithm
	"crypto/sha1" //nolint:gosec // BagIt manifest algorithm
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

type manifestEntry struct {
	checksum string
	path     string
}

func newHash(alg string) (hash.Hash, error) {
	switch alg {
	case "md5":
		return md5.New(), nil //nolint:gosec
	case "sha1":
		return sha1.New(), nil //nolint:gosec
	case "sha256":
		return sha256.New(), nil
	case "sha512":
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("unsupported checksum algorithm %q", alg)
	}
}

func normalizeAlgorithms(algorithms []string) ([]string, error) {
	if len(algorithms) == 0 {
		return []string{"sha256"}, nil
	}
	out := make([]string, 0, len(algorithms))
	for _, alg := range algorithms {
		alg = strings.ToLower(strings.TrimSpace(alg))
		if _, err := newHash(alg); err != nil {
			return nil, err
		}
		out = append(out, alg)
	}
	return out, nil
}

// checksums hashes a file once per algorithm in a single read.
func checksums(p string, algorithms []string) (map[string]string, int64, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	hashes := make(map[string]hash.Hash, len(algorithms))
	writers := make([]io.Writer, 0, len(algorithms))
	for _, alg := range algorithms {
		h, err := newHash(alg)
		if err != nil {
			return nil, 0, err
		}
		hashes[alg] = h
		writers = append(writers, h)
	}
	n, err := io.Copy(io.MultiWriter(writers...), f)
	if err != nil {
		return nil, 0, err
	}
	sums := make(map[string]string, len(hashes))
	for alg, h := range hashes {
		sums[alg] = hex.EncodeToString(h.Sum(nil))
	}
	return sums, n, nil
}

// Finalize writes payload manifests, bag-info.txt, and tag manifests. It may
// be called again after more files are added; every generated file is
// rewritten.
func (b *Bag) Finalize() error {
	files := b.Files()
	entries := make(map[string][]manifestEntry, len(b.algorithms))
	var octets int64
	for _, logical := range files {
		rel := payloadDir + "/" + logical
		sums, n, err := checksums(filepath.Join(b.dir, filepath.FromSlash(rel)), b.algorithms)
		if err != nil {
			return fmt.Errorf("checksum %s: %w", rel, err)
		}
		octets += n
		for _, alg := range b.algorithms {
			entries[alg] = append(entries[alg], manifestEntry{checksum: sums[alg], path: rel})
		}
	}
	for _, alg := range b.algorithms {
		if err := writeManifest(filepath.Join(b.dir, "manifest-"+alg+".txt"), entries[alg]); err != nil {
			return err
		}
	}

	if err := b.writeInfo(octets, len(files)); err != nil {
		return err
	}

	tagFiles := []string{declaration, infoFile}
	for _, alg := range b.algorithms {
		tagFiles = append(tagFiles, "manifest-"+alg+".txt")
	}
	tagEntries := make(map[string][]manifestEntry, len(b.algorithms))
	for _, name := range tagFiles {
		sums, _, err := checksums(filepath.Join(b.dir, name), b.algorithms)
		if err != nil {
			return fmt.Errorf("checksum %s: %w", name, err)
		}
		for _, alg := range b.algorithms {
			tagEntries[alg] = append(tagEntries[alg], manifestEntry{checksum: sums[alg], path: name})
		}
	}
	for _, alg := range b.algorithms {
		if err := writeManifest(filepath.Join(b.dir, "tagmanifest-"+alg+".txt"), tagEntries[alg]); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bag) writeInfo(octets int64, count int) error {
	generated := map[string]string{
		"Bagging-Date": b.now().Format("2006-01-02"),
		"Payload-Oxum": fmt.Sprintf("%d.%d", octets, count),
		"Bag-Size":     humanize.Bytes(uint64(octets)),
	}

	var sb strings.Builder
	for _, tag := range b.info {
		if _, ok := generated[tag.Key]; ok {
			continue
		}
		fmt.Fprintf(&sb, "%s: %s\n", tag.Key, tag.Value)
	}
	for _, key := range []string{"Bagging-Date", "Payload-Oxum", "Bag-Size"} {
		fmt.Fprintf(&sb, "%s: %s\n", key, generated[key])
	}
	if err := os.WriteFile(filepath.Join(b.dir, infoFile), []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write bag info: %w", err)
	}

	kept := b.info[:0]
	for _, tag := range b.info {
		if _, ok := generated[tag.Key]; !ok {
			kept = append(kept, tag)
		}
	}
	b.info = kept
	for _, key := range []string{"Bagging-Date", "Payload-Oxum", "Bag-Size"} {
		b.info = append(b.info, Tag{Key: key, Value: generated[key]})
	}
	return nil
}

// Validate recomputes payload checksums and checks completeness: every
// manifest entry must exist and match, every payload file must be listed, and
// Payload-Oxum, when present, must agree with the payload.
func (b *Bag) Validate() error {
	var problems []error
	onDisk, err := b.walkPayload()
	if err != nil {
		return err
	}
	for _, alg := range b.algorithms {
		manifest := filepath.Join(b.dir, "manifest-"+alg+".txt")
		entries, err := readManifest(manifest)
		if err != nil {
			return err
		}
		listed := make(map[string]struct{}, len(entries))
		for _, entry := range entries {
			listed[entry.path] = struct{}{}
			sums, _, err := checksums(filepath.Join(b.dir, filepath.FromSlash(entry.path)), []string{alg})
			if err != nil {
				problems = append(problems, fmt.Errorf("%s: %w", entry.path, err))
				continue
			}
			if !strings.EqualFold(sums[alg], entry.checksum) {
				problems = append(problems, fmt.Errorf("%s: %s checksum mismatch", entry.path, alg))
			}
		}
		for _, f := range onDisk {
			if _, ok := listed[payloadDir+"/"+f]; !ok {
				problems = append(problems, fmt.Errorf("%s/%s: not listed in manifest-%s.txt", payloadDir, f, alg))
			}
		}
	}

	if oxum, ok := b.InfoValue("Payload-Oxum"); ok {
		var octets int64
		for _, f := range onDisk {
			info, err := os.Stat(filepath.Join(b.dir, payloadDir, filepath.FromSlash(f)))
			if err != nil {
				problems = append(problems, err)
				continue
			}
			octets += info.Size()
		}
		if want := strconv.FormatInt(octets, 10) + "." + strconv.Itoa(len(onDisk)); oxum != want {
			problems = append(problems, fmt.Errorf("Payload-Oxum %s does not match payload %s", oxum, want))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidBag, errors.Join(problems...))
	}
	return nil
}

func writeManifest(p string, entries []manifestEntry) error {
	sort.Slice(entries, func(i, j int) bool { return entries[i].path < entries[j].path })
	var sb strings.Builder
	for _, entry := range entries {
		sb.WriteString(entry.checksum)
		sb.WriteString("  ")
		sb.WriteString(encodePath(entry.path))
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(p, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(p), err)
	}
	return nil
}

func readManifest(p string) ([]manifestEntry, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(p), err)
	}
	defer f.Close()

	var entries []manifestEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		sum, rest, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("%w: malformed line in %s: %q", ErrInvalidBag, filepath.Base(p), line)
		}
		entries = append(entries, manifestEntry{
			checksum: sum,
			path:     decodePath(strings.TrimLeft(rest, " \t")),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(p), err)
	}
	return entries, nil
}

// Manifest paths percent-encode CR, LF, and % (BagIt 1.0 §2.1.3).
var (
	pathEncoder = strings.NewReplacer("%", "%25", "\n", "%0A", "\r", "%0D")
	pathDecoder = strings.NewReplacer("%0A", "\n", "%0a", "\n", "%0D", "\r", "%0d", "\r", "%25", "%")
)

func encodePath(p string) string { return pathEncoder.Replace(p) }

func decodePath(p string) string { return pathDecoder.Replace(p) }
