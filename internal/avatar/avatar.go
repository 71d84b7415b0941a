// Package avatar turns an uploaded picture into a 250x250 avatar.
//
// The upload is spooled to the temp directory, decoded, resized without
// keeping the aspect ratio, encoded in the format of its extension and
// handed to a file store. The temp file is removed on every exit path.
package avatar

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/contactsapi/internal/logger"
	"github.com/patric-chuzhbe/contactsapi/internal/models"
)

const (
	// Size is the width and the height of every stored avatar.
	Size = 250

	// URLPrefix is the public path avatars are served under.
	URLPrefix = "/avatars/"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type fileStore interface {
	Save(ctx context.Context, name string, content io.Reader, contentType string) error
}

type Processor struct {
	store  fileStore
	tmpDir string
}

func New(store fileStore, tmpDir string) *Processor {
	return &Processor{
		store:  store,
		tmpDir: tmpDir,
	}
}

// Process stores upload as the avatar of userID and returns its public URL.
// A nil upload is models.ErrNoAvatarFile and touches nothing on disk.
func (p *Processor) Process(
	ctx context.Context,
	userID string,
	upload io.Reader,
	originalName string,
) (string, error) {
	if upload == nil {
		return "", models.ErrNoAvatarFile
	}

	originalName = cleanName(originalName)

	tmpPath, err := p.spool(upload, originalName)
	if tmpPath != "" {
		defer func() {
			if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
				logger.Log.Debugln("Error calling the `os.Remove()`: ", zap.Error(err))
			}
		}()
	}
	if err != nil {
		return "", err
	}

	img, err := imaging.Open(tmpPath)
	if err != nil {
		return "", fmt.Errorf("%w: decode: %w", models.ErrAvatarProcessing, err)
	}

	resized := imaging.Resize(img, Size, Size, imaging.Lanczos)

	format, err := imaging.FormatFromFilename(originalName)
	if err != nil {
		format = imaging.PNG
		originalName += ".png"
	}

	var encoded bytes.Buffer
	if err := imaging.Encode(&encoded, resized, format); err != nil {
		return "", fmt.Errorf("%w: encode: %w", models.ErrAvatarProcessing, err)
	}

	name := fmt.Sprintf("%s_%s_%s", userID, uuid.NewString(), originalName)
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))

	if err := p.store.Save(ctx, name, bytes.NewReader(encoded.Bytes()), contentType); err != nil {
		return "", fmt.Errorf("%w: save: %w", models.ErrAvatarProcessing, err)
	}

	return URLPrefix + name, nil
}

// spool copies upload into the temp directory. The returned path is set
// whenever a file was created, even on a failed copy.
func (p *Processor) spool(upload io.Reader, originalName string) (string, error) {
	if err := os.MkdirAll(p.tmpDir, 0755); err != nil {
		return "", fmt.Errorf("in internal/avatar/avatar.go/spool(): error while `os.MkdirAll()` calling: %w", err)
	}

	file, err := os.CreateTemp(p.tmpDir, fmt.Sprintf("%d-*-%s", time.Now().UnixMilli(), originalName))
	if err != nil {
		return "", fmt.Errorf("in internal/avatar/avatar.go/spool(): error while `os.CreateTemp()` calling: %w", err)
	}
	tmpPath := file.Name()

	_, copyErr := io.Copy(file, upload)
	closeErr := file.Close()
	if copyErr != nil {
		return tmpPath, fmt.Errorf("in internal/avatar/avatar.go/spool(): error while `io.Copy()` calling: %w", copyErr)
	}
	if closeErr != nil {
		return tmpPath, closeErr
	}

	return tmpPath, nil
}

// cleanName keeps only the base name of a client supplied file name and
// replaces everything outside [A-Za-z0-9._-] with "_", so the stored name
// is a valid URL path segment as is.
func cleanName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeNameChars.ReplaceAllString(strings.TrimSpace(name), "_")
	if strings.Trim(name, "._") == "" {
		return "avatar"
	}

	return name
}
