package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tendant/simple-publish/pkg/publishing"
)

func newTestBackend(t *testing.T, publicRead bool) *Backend {
	t.Helper()
	b, err := New(Config{
		BaseDir:    t.TempDir(),
		URLPrefix:  "http://localhost:8080/files/",
		Secret:     "fs-test-secret",
		PublicRead: publicRead,
	})
	if err != nil {
		t.Fatalf("new fs backend: %v", err)
	}
	return b
}

func upload(t *testing.T, b *Backend, key, contentType string, data []byte) *publishing.UploadResult {
	t.Helper()
	res, err := b.Upload(context.Background(), publishing.UploadParams{
		ObjectKey:   key,
		Reader:      bytes.NewReader(data),
		SizeHint:    int64(len(data)),
		ContentType: contentType,
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	return res
}

func TestFSBackend_Upload(t *testing.T) {
	b := newTestBackend(t, false)
	key := "app-1/image/2024/03/id-1-banner.png"

	res := upload(t, b, key, "image/png", []byte("not really a png"))
	if res.SizeBytes != 16 {
		t.Fatalf("expected 16 bytes, got %d", res.SizeBytes)
	}
	if res.ContentType != "image/png" {
		t.Fatalf("unexpected content type %q", res.ContentType)
	}

	got, err := os.ReadFile(filepath.Join(b.baseDir, key))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "not really a png" {
		t.Fatalf("content mismatch: %q", got)
	}
}

func TestFSBackend_UploadSniffsContentType(t *testing.T) {
	b := newTestBackend(t, false)

	large := bytes.Repeat([]byte("a"), 2048)
	res := upload(t, b, "app-1/file/notes.txt", "", large)
	if !strings.HasPrefix(res.ContentType, "text/plain") {
		t.Fatalf("expected sniffed text/plain, got %q", res.ContentType)
	}
	if res.SizeBytes != 2048 {
		t.Fatalf("expected 2048 bytes, got %d", res.SizeBytes)
	}
}

type failingReader struct{ sent bool }

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.sent {
		r.sent = true
		return copy(p, bytes.Repeat([]byte("x"), 600)), nil
	}
	return 0, errors.New("connection reset")
}

func TestFSBackend_UploadFailureRemovesPartialFile(t *testing.T) {
	b := newTestBackend(t, false)
	key := "app-1/2024/03/id-1-broken.mp4"

	_, err := b.Upload(context.Background(), publishing.UploadParams{ObjectKey: key, Reader: &failingReader{}, ContentType: "video/mp4"})
	if err == nil {
		t.Fatal("expected upload error")
	}
	if _, err := os.Stat(filepath.Join(b.baseDir, key)); !os.IsNotExist(err) {
		t.Fatalf("expected partial file to be removed, stat err: %v", err)
	}
}

func TestFSBackend_RejectsEscapingKeys(t *testing.T) {
	b := newTestBackend(t, false)

	for _, key := range []string{"", "../outside.txt", "app-1/../../outside.txt"} {
		_, err := b.Upload(context.Background(), publishing.UploadParams{ObjectKey: key, Reader: strings.NewReader("x")})
		if err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}

func TestFSBackend_PresignedURL(t *testing.T) {
	b := newTestBackend(t, false)
	key := "app-1/2024/03/id-1-clip.mp4"
	upload(t, b, key, "video/mp4", []byte("video-bytes"))

	raw, err := b.PresignedURL(context.Background(), key, time.Minute)
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if u.Path != "/files/"+key {
		t.Fatalf("unexpected path %q", u.Path)
	}

	serve := func(path, token string) *httptest.ResponseRecorder {
		target := path
		if token != "" {
			target += "?token=" + url.QueryEscape(token)
		}
		w := httptest.NewRecorder()
		b.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		return w
	}

	token := u.Query().Get("token")

	w := serve("/"+key, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body, _ := io.ReadAll(w.Body)
	if string(body) != "video-bytes" {
		t.Fatalf("body mismatch: %q", body)
	}

	if w := serve("/"+key, ""); w.Code != http.StatusForbidden {
		t.Fatalf("unsigned request: expected 403, got %d", w.Code)
	}
	if w := serve("/app-1/other.mp4", token); w.Code != http.StatusForbidden {
		t.Fatalf("token for another key: expected 403, got %d", w.Code)
	}

	b.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if w := serve("/"+key, token); w.Code != http.StatusForbidden {
		t.Fatalf("expired token: expected 403, got %d", w.Code)
	}

	if _, err := b.PresignedURL(context.Background(), key, 0); err == nil {
		t.Fatal("expected error for zero expiry")
	}
}

func TestFSBackend_TokensUseDerivedKeyAndAudience(t *testing.T) {
	b := newTestBackend(t, false)
	key := "app-1/2024/03/id-1-clip.mp4"
	upload(t, b, key, "video/mp4", []byte("video-bytes"))

	sign := func(secret []byte, audience ...string) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Audience:  audience,
			Subject:   key,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		}).SignedString(secret)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return token
	}

	if bytes.Equal(b.secret, []byte("fs-test-secret")) {
		t.Fatal("signing key must differ from the configured secret")
	}
	if b.verify(key, sign([]byte("fs-test-secret"), filesAudience)) {
		t.Fatal("token signed with the raw secret must not verify")
	}
	if b.verify(key, sign(b.secret)) {
		t.Fatal("token without the files audience must not verify")
	}
	if b.verify(key, sign(b.secret, "simple-publish-admin")) {
		t.Fatal("token for another audience must not verify")
	}
	if !b.verify(key, sign(b.secret, filesAudience)) {
		t.Fatal("expected token with derived key and files audience to verify")
	}
}

func TestFSBackend_PublicRead(t *testing.T) {
	b := newTestBackend(t, true)
	upload(t, b, "app-1/image/logo.png", "image/png", []byte("logo"))

	w := httptest.NewRecorder()
	b.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/app-1/image/logo.png", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	b.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/app-1/missing.png", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	b.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/app-1/image/logo.png", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{URLPrefix: "http://x", Secret: "s"}); err == nil {
		t.Fatal("expected error without base dir")
	}
	if _, err := New(Config{BaseDir: t.TempDir(), Secret: "s"}); err == nil {
		t.Fatal("expected error without url prefix")
	}
	if _, err := New(Config{BaseDir: t.TempDir(), URLPrefix: "http://x"}); err == nil {
		t.Fatal("expected error without secret")
	}
}
