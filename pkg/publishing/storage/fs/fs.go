package fs

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"

	"github.com/tendant/simple-publish/pkg/publishing"
)

const (
	tokenParam = "token"
	// filesAudience is the aud claim of download tokens.
	filesAudience = "simple-publish-files"
	keyInfo       = "simple-publish files v1"
)

// Backend is a filesystem implementation of the publishing.MediaStore interface.
// Presigned URLs carry an HMAC-signed token that Handler verifies.
type Backend struct {
	baseDir    string
	urlPrefix  string
	secret     []byte
	publicRead bool
	now        func() time.Time
}

// Config options for the filesystem backend
type Config struct {
	BaseDir    string // Base directory for storing files
	URLPrefix  string // URL at which Handler is mounted
	Secret     string // Master secret; the signing key is derived from it
	PublicRead bool   // Serve unsigned requests, like a public-read bucket
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if config.URLPrefix == "" {
		return nil, errors.New("url prefix is required")
	}
	if config.Secret == "" {
		return nil, errors.New("signing secret is required")
	}

	baseDir, err := filepath.Abs(config.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	secret, err := deriveKey(config.Secret)
	if err != nil {
		return nil, err
	}

	return &Backend{
		baseDir:    baseDir,
		urlPrefix:  strings.TrimRight(config.URLPrefix, "/"),
		secret:     secret,
		publicRead: config.PublicRead,
		now:        time.Now,
	}, nil
}

// deriveKey expands secret into a key used only for download tokens, so a
// secret shared with the access-token issuer never signs both.
func deriveKey(secret string) ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}
	return key, nil
}

// path resolves objectKey under baseDir, rejecting keys that escape it.
func (b *Backend) path(objectKey string) (string, error) {
	if objectKey == "" {
		return "", errors.New("object key is required")
	}
	p := filepath.Join(b.baseDir, filepath.FromSlash(objectKey))
	if p != b.baseDir && !strings.HasPrefix(p, b.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("object key %q escapes the storage directory", objectKey)
	}
	return p, nil
}

// Upload writes the stream to disk. The content type is sniffed when the
// uploader declares none.
func (b *Backend) Upload(ctx context.Context, params publishing.UploadParams) (*publishing.UploadResult, error) {
	filePath, err := b.path(params.ObjectKey)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	written, contentType, err := writeUpload(file, params)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close file: %w", closeErr)
	}
	if err != nil {
		// drop the partial file
		_ = os.Remove(filePath)
		return nil, err
	}

	return &publishing.UploadResult{
		ObjectKey:   params.ObjectKey,
		SizeBytes:   written,
		ContentType: contentType,
	}, nil
}

func writeUpload(w io.Writer, params publishing.UploadParams) (int64, string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(params.Reader, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return 0, "", fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]

	contentType := params.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(head)
	}

	written, err := io.Copy(w, io.MultiReader(bytes.NewReader(head), params.Reader))
	if err != nil {
		return 0, "", fmt.Errorf("failed to write file: %w", err)
	}
	return written, contentType, nil
}

type fileClaims struct {
	jwt.RegisteredClaims
}

// PresignedURL returns a URL under URLPrefix that Handler honours until expiry.
func (b *Backend) PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		return "", fmt.Errorf("presign %s: expiry must be positive", objectKey)
	}
	if _, err := b.path(objectKey); err != nil {
		return "", err
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, fileClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{filesAudience},
			Subject:   objectKey,
			ExpiresAt: jwt.NewNumericDate(b.now().Add(expiry)),
		},
	}).SignedString(b.secret)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", objectKey, err)
	}

	return fmt.Sprintf("%s/%s?%s=%s", b.urlPrefix, objectKey, tokenParam, url.QueryEscape(token)), nil
}

func (b *Backend) verify(objectKey, token string) bool {
	parsed, err := jwt.ParseWithClaims(token, &fileClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return b.secret, nil
	}, jwt.WithTimeFunc(b.now), jwt.WithExpirationRequired(), jwt.WithAudience(filesAudience))
	if err != nil || !parsed.Valid {
		return false
	}
	claims, ok := parsed.Claims.(*fileClaims)
	return ok && claims.Subject == objectKey
}

// Handler serves stored files. Mount it with the URLPrefix path stripped.
func (b *Backend) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		objectKey := strings.TrimPrefix(r.URL.Path, "/")
		token := r.URL.Query().Get(tokenParam)
		switch {
		case token != "":
			if !b.verify(objectKey, token) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
		case !b.publicRead:
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}

		filePath, err := b.path(objectKey)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		file, err := os.Open(filePath)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer file.Close()

		info, err := file.Stat()
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
		http.ServeContent(w, r, filepath.Base(filePath), info.ModTime(), file)
	})
}
