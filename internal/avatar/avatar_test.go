package avatar

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/contactsapi/internal/filestore/diskstore"
	"github.com/patric-chuzhbe/contactsapi/internal/models"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func setupProcessor(t *testing.T) (*Processor, string, string) {
	t.Helper()

	root := t.TempDir()
	avatarsDir := filepath.Join(root, "public", "avatars")
	tmpDir := filepath.Join(root, "tmp")

	store, err := diskstore.New(avatarsDir)
	require.NoError(t, err)

	return New(store, tmpDir), avatarsDir, tmpDir
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return
	}
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProcess(t *testing.T) {
	processor, avatarsDir, tmpDir := setupProcessor(t)

	avatarURL, err := processor.Process(context.Background(), "user1", bytes.NewReader(pngBytes(t, 400, 300)), "me.png")
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(avatarURL, "/avatars/user1_"))
	require.True(t, strings.HasSuffix(avatarURL, "_me.png"))

	file, err := os.Open(filepath.Join(avatarsDir, strings.TrimPrefix(avatarURL, URLPrefix)))
	require.NoError(t, err)
	defer file.Close()

	config, format, err := image.DecodeConfig(file)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, Size, config.Width)
	assert.Equal(t, Size, config.Height)

	assertDirEmpty(t, tmpDir)
}

func TestProcessUnknownExtension(t *testing.T) {
	processor, avatarsDir, tmpDir := setupProcessor(t)

	avatarURL, err := processor.Process(context.Background(), "user1", bytes.NewReader(pngBytes(t, 10, 10)), "picture.dat")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(avatarURL, "_picture.dat.png"))

	_, err = os.Stat(filepath.Join(avatarsDir, strings.TrimPrefix(avatarURL, URLPrefix)))
	assert.NoError(t, err)

	assertDirEmpty(t, tmpDir)
}

func TestProcessNotAnImage(t *testing.T) {
	processor, avatarsDir, tmpDir := setupProcessor(t)

	_, err := processor.Process(context.Background(), "user1", strings.NewReader("definitely not an image"), "me.png")
	assert.ErrorIs(t, err, models.ErrAvatarProcessing)

	assertDirEmpty(t, tmpDir)
	assertDirEmpty(t, avatarsDir)
}

func TestProcessWithoutFile(t *testing.T) {
	processor, avatarsDir, tmpDir := setupProcessor(t)

	_, err := processor.Process(context.Background(), "user1", nil, "")
	assert.ErrorIs(t, err, models.ErrNoAvatarFile)

	_, err = os.Stat(tmpDir)
	assert.True(t, os.IsNotExist(err))
	assertDirEmpty(t, avatarsDir)
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "a.png", cleanName("a.png"))
	assert.Equal(t, "a.png", cleanName("../../a.png"))
	assert.Equal(t, "a.png", cleanName(`C:\Users\me\a.png`))
	assert.Equal(t, "avatar", cleanName(""))
	assert.Equal(t, "avatar", cleanName(".."))
	assert.Equal(t, "100_.png", cleanName("100%.png"))
	assert.Equal(t, "my_photo_1_.jpg", cleanName("my photo (1).jpg"))
	assert.Equal(t, "avatar", cleanName("%%%"))
}

func TestProcessNameIsURLSafe(t *testing.T) {
	processor, avatarsDir, _ := setupProcessor(t)

	avatarURL, err := processor.Process(context.Background(), "user1", bytes.NewReader(pngBytes(t, 10, 10)), "100% me?.png")
	require.NoError(t, err)

	parsed, err := url.Parse(avatarURL)
	require.NoError(t, err)
	assert.Equal(t, avatarURL, parsed.Path)
	assert.True(t, strings.HasSuffix(avatarURL, "_100_me_.png"))

	_, err = os.Stat(filepath.Join(avatarsDir, strings.TrimPrefix(avatarURL, URLPrefix)))
	assert.NoError(t, err)
}

func TestProcessSameNameConcurrently(t *testing.T) {
	processor, avatarsDir, tmpDir := setupProcessor(t)
	picture := pngBytes(t, 20, 20)

	const uploads = 8
	var wg sync.WaitGroup
	errs := make([]error, uploads)
	for i := 0; i < uploads; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = processor.Process(context.Background(), "user1", bytes.NewReader(picture), "same.png")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}

	entries, err := os.ReadDir(avatarsDir)
	require.NoError(t, err)
	assert.Len(t, entries, uploads)
	assertDirEmpty(t, tmpDir)
}

// seekingStore accepts only bodies that can be rewound, like an S3 client
// signing a request over plain HTTP.
type seekingStore struct {
	saved map[string][]byte
}

func (s *seekingStore) Save(_ context.Context, name string, content io.Reader, _ string) error {
	seeker, ok := content.(io.ReadSeeker)
	if !ok {
		return errors.New("unseekable stream is not supported")
	}
	data, err := io.ReadAll(seeker)
	if err != nil {
		return err
	}
	if _, err := seeker.Seek(0, io.SeekStart); err != nil {
		return err
	}
	s.saved[name] = data

	return nil
}

func TestProcessHandsSeekableContentToStore(t *testing.T) {
	store := &seekingStore{saved: map[string][]byte{}}
	processor := New(store, t.TempDir())

	avatarURL, err := processor.Process(context.Background(), "user1", bytes.NewReader(pngBytes(t, 30, 30)), "me.png")
	require.NoError(t, err)

	data, ok := store.saved[strings.TrimPrefix(avatarURL, URLPrefix)]
	require.True(t, ok)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, Size, img.Bounds().Dx())
}
