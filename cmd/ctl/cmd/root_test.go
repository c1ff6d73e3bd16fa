package cmd

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a1x007/Qr-Scanner/internal/compose"
	"github.com/a1x007/Qr-Scanner/internal/imageio"
	"github.com/a1x007/Qr-Scanner/internal/pipeline"
	"github.com/a1x007/Qr-Scanner/internal/style"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRoot(context.Background(), "abc123")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeSolid(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	require.NoError(t, imageio.Save(path, img))
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "abc123", strings.TrimSpace(out))
}

func TestRoot_PrintsTree(t *testing.T) {
	out, err := run(t)
	require.NoError(t, err)
	for _, name := range []string{"combine", "convert", "overlay", "qr TEXT", "version"} {
		assert.Contains(t, out, name)
	}
}

func TestQRCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "code.png")
	_, err := run(t, "qr", "hello", "-o", path, "--version", "4")
	require.NoError(t, err)
	img, err := imageio.Load(path)
	require.NoError(t, err)
	v, ok := compose.InferVersion(img)
	require.True(t, ok)
	assert.Equal(t, 4, v)
}

func TestCombineCmd_FromTextDefaultOutput(t *testing.T) {
	dir := t.TempDir()
	bg := filepath.Join(dir, "bg.png")
	writeSolid(t, bg, 16, 16, color.NRGBA{10, 200, 10, 255})

	out, err := run(t, "combine", "--text", "hi", "-b", bg, "-c", "--dot-size", "3")
	require.NoError(t, err)
	want := filepath.Join(dir, pipeline.DefaultCombinedName)
	assert.Equal(t, want, strings.TrimSpace(out))

	img, err := imageio.Load(want)
	require.NoError(t, err)
	assert.Zero(t, img.Bounds().Dx()%compose.OutputScale)
}

func TestCombineCmd_Errors(t *testing.T) {
	_, err := run(t, "combine", "--text", "hi")
	assert.Error(t, err)

	dir := t.TempDir()
	bg := filepath.Join(dir, "bg.png")
	writeSolid(t, bg, 4, 4, color.NRGBA{A: 255})
	_, err = run(t, "combine", "--text", "hi", "-b", bg, "--contrast", "0")
	assert.ErrorIs(t, err, style.ErrInvalidConfig)
	_, err = run(t, "combine", "--text", "hi", "-b", bg, "-q", "X")
	assert.ErrorIs(t, err, style.ErrInvalidConfig)
}

func TestConvertCmd(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.tiff")
	writeSolid(t, in, 12, 8, color.NRGBA{240, 240, 240, 255})

	_, err := run(t, "convert", in, out, "-q", "L", "--dither", "atkinson")
	require.NoError(t, err)
	img, err := imageio.Load(out)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
}

func TestOverlayCmd(t *testing.T) {
	dir := t.TempDir()
	bg := filepath.Join(dir, "bg.png")
	qr := filepath.Join(dir, "qr.png")
	writeSolid(t, bg, 300, 300, color.NRGBA{200, 0, 0, 255})
	_, err := run(t, "qr", "overlay", "-o", qr)
	require.NoError(t, err)
	qrImg, err := imageio.Load(qr)
	require.NoError(t, err)

	blend := filepath.Join(dir, "blend.png")
	_, err = run(t, "overlay", bg, qr, blend)
	require.NoError(t, err)
	img, err := imageio.Load(blend)
	require.NoError(t, err)
	assert.Equal(t, qrImg.Bounds(), img.Bounds())

	paste := filepath.Join(dir, "paste.png")
	_, err = run(t, "overlay", bg, qr, paste, "--at", "5,5", "--opacity", "255")
	require.NoError(t, err)
	img, err = imageio.Load(paste)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 300, 300), img.Bounds())
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, img.NRGBAAt(6, 6))

	_, err = run(t, "overlay", bg, qr, paste, "--at", "5")
	assert.Error(t, err)
}
