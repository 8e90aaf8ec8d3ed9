package drupal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bagger/internal/config"
	"bagger/internal/services"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	settings := config.NewMediaSettings(server.URL, nil, false, "", 5*time.Second, true)
	return server, NewClient(settings, "token-123")
}

func TestMediaListSendsFormatAndToken(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/node/7/media" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("_format"); got != "json" {
			t.Errorf("expected _format=json, got %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-123" {
			t.Errorf("unexpected authorization header: %q", got)
		}
		_, _ = w.Write([]byte(`[{"mid":[{"value":3}],"field_media_use":[{"target_id":15,"url":"/taxonomy/term/15"}],"field_media_file":[{"target_id":"9"}]}]`))
	})

	records, err := client.MediaList(context.Background(), "7")
	if err != nil {
		t.Fatalf("MediaList: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	rec := records[0]
	if rec.MediaID() != "3" {
		t.Fatalf("unexpected media id %q", rec.MediaID())
	}
	if len(rec.MediaUse) != 1 || rec.MediaUse[0].URL != "/taxonomy/term/15" {
		t.Fatalf("unexpected media use: %+v", rec.MediaUse)
	}
	if len(rec.File) != 1 || rec.File[0].TargetID != "9" {
		t.Fatalf("unexpected file field: %+v", rec.File)
	}
}

func TestAnonymousRequestsOmitAuthorization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header["Authorization"]; ok {
			t.Errorf("expected no authorization header, got %q", r.Header.Get("Authorization"))
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClientWithDoer(server.URL+"/", "", server.Client())
	if client.BaseURL() != server.URL {
		t.Fatalf("expected trailing slash trimmed, got %q", client.BaseURL())
	}
	if _, err := client.MediaList(context.Background(), "1"); err != nil {
		t.Fatalf("MediaList: %v", err)
	}
}

func TestMediaListIgnoresStatusByDefault(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`[]`))
	})
	records, err := client.MediaList(context.Background(), "1")
	if err != nil {
		t.Fatalf("expected status to be ignored, got %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty list, got %d", len(records))
	}

	client.SetStrictStatus(true)
	_, err = client.MediaList(context.Background(), "1")
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error in strict mode, got %v", err)
	}
}

func TestMediaListRejectsNonArray(t *testing.T) {
	for _, body := range []string{`{"message":"Access denied"}`, `null`, ` null `, `"media"`, `7`} {
		_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		})
		records, err := client.MediaList(context.Background(), "1")
		if !errors.Is(err, services.ErrMalformedResponse) {
			t.Fatalf("body %s: expected malformed response, got records=%v err=%v", body, records, err)
		}
	}
}

func TestMediaListAcceptsEmptyArray(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(" [] "))
	})
	records, err := client.MediaList(context.Background(), "1")
	if err != nil {
		t.Fatalf("MediaList: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestMediaListRejectsInvalidJSON(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	})
	_, err := client.MediaList(context.Background(), "1")
	if !errors.Is(err, services.ErrMalformedResponse) {
		t.Fatalf("expected malformed response, got %v", err)
	}
}

func TestResolveFileURLPrefixesBase(t *testing.T) {
	server, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/entity/file/9" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"fid":[{"value":9}],"uri":[{"value":"private://doc.pdf","url":"/system/files/doc.pdf"}]}`))
	})
	got, err := client.ResolveFileURL(context.Background(), "9")
	if err != nil {
		t.Fatalf("ResolveFileURL: %v", err)
	}
	if want := server.URL + "/system/files/doc.pdf"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestResolveFileURLMissingURI(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"fid":[{"value":9}]}`))
	})
	_, err := client.ResolveFileURL(context.Background(), "9")
	if !errors.Is(err, services.ErrMalformedResponse) {
		t.Fatalf("expected malformed response, got %v", err)
	}
}

func TestTermExternalURI(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/taxonomy/term/15" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"tid":[{"value":15}],"field_external_uri":[{"uri":"http://pcdm.org/use#PreservationMasterFile"}]}`))
	})
	got, err := client.TermExternalURI(context.Background(), "/taxonomy/term/15")
	if err != nil {
		t.Fatalf("TermExternalURI: %v", err)
	}
	if got != "http://pcdm.org/use#PreservationMasterFile" {
		t.Fatalf("unexpected uri %q", got)
	}
}

func TestNodeKeepsRawDocument(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"nid":[{"value":7}],"uuid":[{"value":"0f5b2f43-7f1c-4a47-9c1e-0b1d1d1e2f3a"}],"title":[{"value":"Letter"}]}`))
	})
	node, err := client.Node(context.Background(), "7")
	if err != nil {
		t.Fatalf("Node: %v", err)
	}
	if node.UUIDValue() != "0f5b2f43-7f1c-4a47-9c1e-0b1d1d1e2f3a" {
		t.Fatalf("unexpected uuid %q", node.UUIDValue())
	}
	if !bytes.Contains(node.Raw, []byte(`"Letter"`)) {
		t.Fatalf("expected raw document retained, got %s", node.Raw)
	}
}

func TestDownloadStreamsBody(t *testing.T) {
	payload := strings.Repeat("x", 10_000)
	server, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token-123" {
			t.Errorf("unexpected authorization header: %q", got)
		}
		if r.URL.RawQuery != "itok=abc" {
			t.Errorf("expected original query preserved, got %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(payload))
	})
	var buf bytes.Buffer
	n, err := client.Download(context.Background(), server.URL+"/files/a.png?itok=abc", &buf)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if n != int64(len(payload)) || buf.String() != payload {
		t.Fatalf("unexpected download: %d bytes", n)
	}
}

func TestDownloadTimeoutIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	settings := config.NewMediaSettings(server.URL, nil, false, "", 50*time.Millisecond, true)
	client := NewClient(settings, "")
	_, err := client.Download(context.Background(), server.URL+"/slow", &bytes.Buffer{})
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestEntityIDDecoding(t *testing.T) {
	var ref FileReference
	for input, want := range map[string]EntityID{
		`{"target_id":12}`:   "12",
		`{"target_id":"12"}`: "12",
		`{"target_id":null}`: "",
		`{}`:                 "",
	} {
		ref = FileReference{}
		if err := json.Unmarshal([]byte(input), &ref); err != nil {
			t.Fatalf("unmarshal %s: %v", input, err)
		}
		if ref.TargetID != want {
			t.Fatalf("%s: got %q want %q", input, ref.TargetID, want)
		}
	}
	if !EntityID("0").Empty() || EntityID("5").Empty() {
		t.Fatal("unexpected Empty semantics")
	}
}
