package qrsource

import (
	"image"
	"image/color"
	"testing"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a1x007/Qr-Scanner/internal/compose"
	"github.com/a1x007/Qr-Scanner/internal/geometry"
)

func scan(t *testing.T, img image.Image) string {
	t.Helper()
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	require.NoError(t, err)
	result, err := zxqr.NewQRCodeReader().Decode(bmp, nil)
	require.NoError(t, err)
	return result.GetText()
}

func scanLevel(t *testing.T, img image.Image) string {
	t.Helper()
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	require.NoError(t, err)
	result, err := zxqr.NewQRCodeReader().Decode(bmp, nil)
	require.NoError(t, err)
	level, _ := result.GetResultMetadata()[gozxing.ResultMetadataType_ERROR_CORRECTION_LEVEL].(string)
	return level
}

func intPtr(v int) *int { return &v }

func TestFromText_AutoVersion(t *testing.T) {
	code, err := FromText("https://example.com", nil)
	require.NoError(t, err)
	require.GreaterOrEqual(t, code.Version, 1)

	side := geometry.Modules(code.Version)*compose.ModulePixels + 2*compose.Margin
	assert.Equal(t, image.Rect(0, 0, side, side), code.Image.Bounds())

	v, ok := compose.InferVersion(code.Image)
	require.True(t, ok)
	assert.Equal(t, code.Version, v)
	assert.Equal(t, "https://example.com", scan(t, code.Image))
}

func TestFromText_ForcedVersion(t *testing.T) {
	code, err := FromText("hello", intPtr(5))
	require.NoError(t, err)
	assert.Equal(t, 5, code.Version)
	assert.Equal(t, 37*3+24, code.Image.Bounds().Dx())

	// finder corner is dark, quiet zone and separator are light
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, code.Image.NRGBAAt(compose.Margin, compose.Margin))
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, code.Image.NRGBAAt(0, 0))
	sep := compose.Margin + 7*compose.ModulePixels + 1
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, code.Image.NRGBAAt(sep, sep))
	assert.Equal(t, "hello", scan(t, code.Image))
}

func TestFromText_SameLevelEitherWay(t *testing.T) {
	// 12 bytes fit version 1 at level M but need version 2 at level Q
	text := "abcdefghijkl"
	auto, err := FromText(text, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, auto.Version)
	assert.Equal(t, "Q", scanLevel(t, auto.Image))

	_, err = FromText(text, intPtr(1))
	assert.Error(t, err)

	forced, err := FromText(text, intPtr(auto.Version))
	require.NoError(t, err)
	assert.Equal(t, auto.Image.Bounds(), forced.Image.Bounds())
	assert.Equal(t, "Q", scanLevel(t, forced.Image))
	assert.Equal(t, text, scan(t, forced.Image))
}

func TestFromText_Errors(t *testing.T) {
	_, err := FromText("", nil)
	assert.ErrorIs(t, err, ErrEmptyText)

	for _, v := range []int{0, -1, 41} {
		_, err = FromText("x", intPtr(v))
		assert.ErrorIs(t, err, geometry.ErrInvalidVersion, "version %d", v)
	}

	long := make([]byte, 200)
	for i := range long {
		long[i] = 'a'
	}
	_, err = FromText(string(long), intPtr(1))
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	img := Render(Matrix{{true, false}, {false, true}})
	require.Equal(t, 2*compose.ModulePixels+2*compose.Margin, img.Bounds().Dx())

	dark := color.NRGBA{0, 0, 0, 255}
	light := color.NRGBA{255, 255, 255, 255}
	m, p := compose.Margin, compose.ModulePixels
	assert.Equal(t, dark, img.NRGBAAt(m, m))
	assert.Equal(t, dark, img.NRGBAAt(m+p-1, m+p-1))
	assert.Equal(t, light, img.NRGBAAt(m+p, m))
	assert.Equal(t, dark, img.NRGBAAt(m+p, m+p))
	assert.Equal(t, light, img.NRGBAAt(m-1, m))
}
