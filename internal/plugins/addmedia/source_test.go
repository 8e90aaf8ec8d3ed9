package addmedia

import (
	"testing"

	"bagger/internal/services/drupal"
)

func TestClassifyPriority(t *testing.T) {
	img := []drupal.FileReference{{URL: "https://x/i.png"}}
	doc := []drupal.FileReference{{TargetID: "3"}}
	file := []drupal.FileReference{{URL: "https://x/f.bin"}}

	cases := []struct {
		name   string
		record drupal.MediaRecord
		want   SourceKind
	}{
		{"image wins", drupal.MediaRecord{Image: img, Document: doc, File: file}, SourceImage},
		{"document before file", drupal.MediaRecord{Document: doc, File: file}, SourceDocument},
		{"file", drupal.MediaRecord{File: file}, SourceFile},
		{"empty image ignored", drupal.MediaRecord{Image: []drupal.FileReference{}, File: file}, SourceFile},
		{"none", drupal.MediaRecord{}, SourceUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.record).Kind; got != tc.want {
				t.Fatalf("Classify = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestSourceKindLabel(t *testing.T) {
	if got := SourceDocument.Label(); got != "Document" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := SourceUnknown.Label(); got != "Unknown" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestDirectURLPrefersImage(t *testing.T) {
	record := drupal.MediaRecord{
		Image:    []drupal.FileReference{{URL: "https://x/i.png"}},
		Document: []drupal.FileReference{{URL: "https://x/d.pdf"}},
	}
	if got := directURL(record, Classify(record)); got != "https://x/i.png" {
		t.Fatalf("unexpected url %q", got)
	}

	noURL := drupal.MediaRecord{File: []drupal.FileReference{{TargetID: "8"}}}
	if got := directURL(noURL, Classify(noURL)); got != "" {
		t.Fatalf("expected no direct url, got %q", got)
	}
}

func TestFilenameFromURL(t *testing.T) {
	cases := map[string]string{
		"https://x/files/image.jpg?itok=abc": "image.jpg",
		"https://x/files/a%20b.png":          "a%20b.png",
		"https://x/files/my%20file.jpg":      "my%20file.jpg",
		"https://x/files/a%2Fb.jpg":          "a%2Fb.jpg",
		"https://x/files/doc.pdf#page=2":     "doc.pdf",
		"/system/files/2024-01/scan.tiff":    "scan.tiff",
		"https://x/files/":                   "",
	}
	for in, want := range cases {
		if got := FilenameFromURL(in); got != want {
			t.Fatalf("FilenameFromURL(%q) = %q, want %q", in, got, want)
		}
	}
}
