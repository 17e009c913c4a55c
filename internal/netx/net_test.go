package netx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDownloadToFile(t *testing.T) {
	body := []byte("hello, image")

	t.Run("success 200 OK", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("method = %q, want GET", r.Method)
			}
			_, _ = w.Write(body)
		}))
		defer ts.Close()

		dst := filepath.Join(t.TempDir(), "out.png")
		n, err := DownloadToFile(context.Background(), ts.Client(), ts.URL+"/post/x/image", dst)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != int64(len(body)) {
			t.Fatalf("n = %d, want %d", n, len(body))
		}
		got, err := os.ReadFile(dst)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != string(body) {
			t.Fatalf("body = %q, want %q", got, body)
		}
	})

	t.Run("follows redirect", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/image", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/presigned?X-Amz-Signature=abc", http.StatusTemporaryRedirect)
		})
		mux.HandleFunc("/presigned", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write(body)
		})
		ts := httptest.NewServer(mux)
		defer ts.Close()

		dst := filepath.Join(t.TempDir(), "out.png")
		if _, err := DownloadToFile(context.Background(), ts.Client(), ts.URL+"/image", dst); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, _ := os.ReadFile(dst)
		if string(got) != string(body) {
			t.Fatalf("body = %q, want %q", got, body)
		}
	})

	t.Run("non-200 -> error, nothing written", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not found"}`))
		}))
		defer ts.Close()

		dir := t.TempDir()
		dst := filepath.Join(dir, "out.png")
		_, err := DownloadToFile(context.Background(), ts.Client(), ts.URL, dst)
		var se *StatusError
		if !errors.As(err, &se) {
			t.Fatalf("error = %v, want *StatusError", err)
		}
		if se.Code != http.StatusNotFound || se.Body != `{"error":"not found"}` {
			t.Fatalf("unexpected status error: %+v", se)
		}
		if !strings.Contains(err.Error(), "download failed: 404") {
			t.Fatalf("error = %q, want to contain 404", err.Error())
		}
		entries, _ := os.ReadDir(dir)
		if len(entries) != 0 {
			t.Fatalf("leftover files: %v", entries)
		}
	})

	t.Run("network error", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		ts.Close()

		_, err := DownloadToFile(context.Background(), http.DefaultClient, ts.URL, filepath.Join(t.TempDir(), "x"))
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		var se *StatusError
		if errors.As(err, &se) {
			t.Fatalf("got wrong kind of error: %v", err)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write(body)
		}))
		defer ts.Close()

		dst := filepath.Join(t.TempDir(), "nope", "out.png")
		if _, err := DownloadToFile(context.Background(), ts.Client(), ts.URL, dst); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}
