package objectkey

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind is the media category segment of a generic media key.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindFile  Kind = "file"
)

// DefaultFileName replaces a missing original file name.
const DefaultFileName = "file"

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeKind trims and lowercases kind. Anything outside image, video and
// file becomes file.
func NormalizeKind(kind string) Kind {
	switch k := Kind(strings.ToLower(strings.TrimSpace(kind))); k {
	case KindImage, KindVideo, KindFile:
		return k
	default:
		return KindFile
	}
}

// SanitizeFileName replaces every whitespace run with a single dash.
// No other character is rewritten.
func SanitizeFileName(name string) string {
	if name == "" {
		return DefaultFileName
	}
	return whitespaceRun.ReplaceAllString(name, "-")
}

// Build returns {applicationID}/{kind}/{YYYY}/{MM}/{randomID}-{safeName}
// using the UTC year and month of now.
func Build(applicationID, kind, originalFileName string, now time.Time, randomID string) string {
	now = now.UTC()
	return fmt.Sprintf("%s/%s/%04d/%02d/%s-%s",
		applicationID,
		NormalizeKind(kind),
		now.Year(),
		int(now.Month()),
		randomID,
		SanitizeFileName(originalFileName))
}

// BuildVideo returns {applicationID}/{YYYY}/{MM}/{randomID}-{safeName}.
// Video uploads keep this layout without a kind segment so existing keys stay
// addressable.
func BuildVideo(applicationID, originalFileName string, now time.Time, randomID string) string {
	now = now.UTC()
	return fmt.Sprintf("%s/%04d/%02d/%s-%s",
		applicationID,
		now.Year(),
		int(now.Month()),
		randomID,
		SanitizeFileName(originalFileName))
}

// Builder produces keys with a fresh random id and the current time.
type Builder struct {
	Now   func() time.Time
	NewID func() string
}

// NewBuilder returns a Builder on the wall clock and random UUIDs.
func NewBuilder() *Builder {
	return &Builder{
		Now:   time.Now,
		NewID: uuid.NewString,
	}
}

// Media builds a generic media key.
func (b *Builder) Media(applicationID, kind, originalFileName string) string {
	return Build(applicationID, kind, originalFileName, b.now(), b.newID())
}

// Video builds a video key.
func (b *Builder) Video(applicationID, originalFileName string) string {
	return BuildVideo(applicationID, originalFileName, b.now(), b.newID())
}

func (b *Builder) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

func (b *Builder) newID() string {
	if b.NewID == nil {
		return uuid.NewString()
	}
	return b.NewID()
}
