package bag

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Serialization formats accepted by Serialize.
const (
	FormatTar = "tar"
	FormatTGZ = "tgz"
)

// Serialize writes the bag directory as a single archive in destDir and
// returns the archive path. Entries are rooted at the bag's directory name.
func Serialize(bagDir, format, destDir string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	ext := ""
	switch format {
	case FormatTar:
		ext = ".tar"
	case FormatTGZ, "tar.gz":
		format = FormatTGZ
		ext = ".tar.gz"
	default:
		return "", fmt.Errorf("unsupported serialization %q", format)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create archive directory: %w", err)
	}

	root := filepath.Clean(bagDir)
	name := filepath.Base(root)
	target := filepath.Join(destDir, name+ext)
	tmp, err := os.CreateTemp(destDir, "."+name+"-*.part")
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	var w io.Writer = tmp
	var gz *gzip.Writer
	if format == FormatTGZ {
		gz = gzip.NewWriter(tmp)
		gz.Name = name + ".tar"
		w = gz
	}
	tw := tar.NewWriter(w)
	if err := writeTree(tw, root, name); err != nil {
		return "", err
	}
	if err := tw.Close(); err != nil {
		return "", fmt.Errorf("close tar: %w", err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return "", fmt.Errorf("close gzip: %w", err)
		}
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close archive: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		tmp = nil
		return "", fmt.Errorf("rename archive: %w", err)
	}
	tmp = nil
	return target, nil
}

func writeTree(tw *tar.Writer, root, prefix string) error {
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(filepath.Join(prefix, rel))
		if d.IsDir() {
			header.Name += "/"
		}
		if err := tw.WriteHeader(header); err != nil {
			return fmt.Errorf("write header %s: %w", header.Name, err)
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		if _, err := io.Copy(tw, f); err != nil {
			return fmt.Errorf("write %s: %w", header.Name, err)
		}
		return nil
	})
}
