package avatar

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	return img
}

func decodeDataURI(t *testing.T, uri string) image.Image {
	t.Helper()
	const prefix = "data:image/png;base64,"
	require.True(t, strings.HasPrefix(uri, prefix))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, prefix))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestProcess_DownscalesLargeImage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(2000, 2000)))

	uri, err := Process(&buf)
	require.NoError(t, err)

	b := decodeDataURI(t, uri).Bounds()
	assert.Equal(t, 300, b.Dx())
	assert.Equal(t, 300, b.Dy())
}

func TestProcess_KeepsAspectRatio(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solid(1200, 600), nil))

	uri, err := Process(&buf)
	require.NoError(t, err)

	b := decodeDataURI(t, uri).Bounds()
	assert.Equal(t, 300, b.Dx())
	assert.Equal(t, 150, b.Dy())
}

func TestProcess_SmallImageUntouched(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(64, 32)))

	uri, err := Process(&buf)
	require.NoError(t, err)

	b := decodeDataURI(t, uri).Bounds()
	assert.Equal(t, 64, b.Dx())
	assert.Equal(t, 32, b.Dy())
}

func TestProcess_NotAnImage(t *testing.T) {
	_, err := Process(strings.NewReader("definitely not an image"))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestThumbnail_TallImage(t *testing.T) {
	out := Thumbnail(solid(100, 1000), MaxSide)
	assert.Equal(t, 30, out.Bounds().Dx())
	assert.Equal(t, 300, out.Bounds().Dy())
}

// pngHeader собирает PNG из одного IHDR с заявленным размером и пустым IEND
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	chunk := func(typ string, data []byte) {
		_ = binary.Write(&buf, binary.BigEndian, uint32(len(data)))
		body := append([]byte(typ), data...)
		buf.Write(body)
		_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(body))
	}

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA
	chunk("IHDR", ihdr)
	chunk("IEND", nil)
	return buf.Bytes()
}

func TestProcess_RejectsOversizedHeader(t *testing.T) {
	forged := pngHeader(50000, 50000)
	require.Less(t, len(forged), 100)

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)

	_, err := Process(bytes.NewReader(forged))

	runtime.ReadMemStats(&after)
	assert.ErrorIs(t, err, ErrInvalidImage)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(16<<20))
}

func TestProcess_RejectsOversizedUpload(t *testing.T) {
	big := bytes.Repeat([]byte{0}, MaxUploadBytes+1)

	_, err := Process(bytes.NewReader(big))
	assert.ErrorIs(t, err, ErrInvalidImage)
}
