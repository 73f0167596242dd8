package services

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodedImage(t *testing.T, w, h int, asJPEG bool) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if asJPEG {
		require.NoError(t, jpeg.Encode(&buf, img, nil))
	} else {
		require.NoError(t, png.Encode(&buf, img))
	}
	return buf.Bytes()
}

func TestLogoProcessorShrinksLargeImages(t *testing.T) {
	p := NewLogoProcessor(1<<20, 256)

	logo, err := p.Process(bytes.NewReader(encodedImage(t, 1024, 512, true)))
	require.NoError(t, err)
	assert.Equal(t, "image/png", logo.MIME)

	cfg, err := png.DecodeConfig(bytes.NewReader(logo.Data))
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.Width)
	assert.Equal(t, 128, cfg.Height)
	assert.True(t, strings.HasPrefix(logo.DataURL(), "data:image/png;base64,"))
}

func TestLogoProcessorKeepsSmallImages(t *testing.T) {
	p := NewLogoProcessor(1<<20, 256)

	logo, err := p.Process(bytes.NewReader(encodedImage(t, 64, 32, false)))
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(logo.Data))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 32, cfg.Height)
}

func TestLogoProcessorRejectsNonImages(t *testing.T) {
	p := NewLogoProcessor(1<<20, 256)

	_, err := p.Process(strings.NewReader("%PDF-1.4 not a logo"))
	assert.ErrorIs(t, err, ErrLogoNotImage)

	// PNG signature followed by garbage sniffs as PNG but cannot be decoded.
	broken := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	_, err = p.Process(bytes.NewReader(broken))
	assert.ErrorIs(t, err, ErrLogoNotImage)
}

func TestLogoProcessorRejectsOversizedUploads(t *testing.T) {
	data := encodedImage(t, 64, 64, false)
	p := NewLogoProcessor(int64(len(data)-1), 256)

	_, err := p.Process(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrLogoTooLarge)
}

// pngHeader is a PNG that stops after its IHDR chunk: enough for DecodeConfig
// to report the declared size without any pixel data behind it.
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	chunk := make([]byte, 0, 17)
	chunk = append(chunk, "IHDR"...)
	chunk = binary.BigEndian.AppendUint32(chunk, w)
	chunk = binary.BigEndian.AppendUint32(chunk, h)
	chunk = append(chunk, 8, 6, 0, 0, 0)

	_ = binary.Write(&buf, binary.BigEndian, uint32(13))
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestLogoProcessorRejectsHugeDimensions(t *testing.T) {
	p := NewLogoProcessor(1<<20, 256)

	tests := []struct {
		name string
		w, h uint32
	}{
		{"square", 12000, 12000},
		{"wide strip", 400000, 101},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logo, err := p.Process(bytes.NewReader(pngHeader(tt.w, tt.h)))
			require.ErrorIs(t, err, ErrLogoTooLarge)
			assert.Nil(t, logo)
		})
	}
}

func TestLogoProcessorAcceptsHeaderWithinBudget(t *testing.T) {
	cfg, err := png.DecodeConfig(bytes.NewReader(pngHeader(800, 600)))
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 600, cfg.Height)
}
