package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a1x007/Qr-Scanner/internal/compose"
	"github.com/a1x007/Qr-Scanner/internal/geometry"
	"github.com/a1x007/Qr-Scanner/internal/imageio"
	"github.com/a1x007/Qr-Scanner/internal/sequence"
	"github.com/a1x007/Qr-Scanner/internal/style"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func router() *gin.Engine {
	h := New()
	h.Workers = 2
	r := gin.New()
	r.Use(RequestContext())
	r.GET("/api/qr", h.QRCodeHandler)
	r.POST("/api/combine", h.CombineHandler)
	r.POST("/api/convert", h.ConvertHandler)
	r.POST("/api/overlay", h.OverlayHandler)
	r.GET("/healthz", h.Health)
	return r
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func encoded(t *testing.T, img image.Image, name string) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imageio.Encode(&buf, img, name))
	return buf.Bytes()
}

type upload struct {
	field, name string
	data        []byte
}

func post(t *testing.T, path string, fields map[string]string, files ...upload) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router().ServeHTTP(w, req)
	return w
}

func get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, name string) *image.NRGBA {
	t.Helper()
	img, err := imageio.Decode(bytes.NewReader(w.Body.Bytes()), name)
	require.NoError(t, err)
	return img
}

func TestHealth(t *testing.T) {
	w := get("/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestQRCodeHandler(t *testing.T) {
	w := get("/api/qr?text=hello&version=3")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "3", w.Header().Get("X-QR-Version"))

	img := decodeBody(t, w, "qr.png")
	side := geometry.Modules(3)*compose.ModulePixels + 2*compose.Margin
	assert.Equal(t, image.Rect(0, 0, side, side), img.Bounds())
}

func TestQRCodeHandler_BadInput(t *testing.T) {
	for _, path := range []string{"/api/qr", "/api/qr?text=a&version=x", "/api/qr?text=a&version=41"} {
		w := get(path)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Contains(t, w.Body.String(), `"error"`)
	}
}

func TestCombineHandler_FromText(t *testing.T) {
	bg := upload{"background", "bg.png", encoded(t, solid(20, 30, color.NRGBA{255, 0, 0, 255}), "bg.png")}
	w := post(t, "/api/combine", map[string]string{"text": "hello", "version": "2", "colorized": "on"}, bg)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "combined_qrcode_")

	img := decodeBody(t, w, "out.png")
	side := (geometry.Modules(2)*compose.ModulePixels + 2*compose.Margin) * compose.OutputScale
	assert.Equal(t, image.Rect(0, 0, side, side), img.Bounds())
}

func TestCombineHandler_UploadedQRAndAnimatedBackground(t *testing.T) {
	qr := get("/api/qr?text=anim&version=2").Body.Bytes()
	seq := sequence.Sequence{Frames: []sequence.Frame{
		{Image: solid(10, 10, color.NRGBA{0, 0, 0, 255}), Delay: 20 * time.Millisecond},
		{Image: solid(10, 10, color.NRGBA{255, 255, 255, 255}), Delay: 40 * time.Millisecond},
	}}
	var gif bytes.Buffer
	require.NoError(t, imageio.EncodeSequence(&gif, seq, "bg.gif"))

	w := post(t, "/api/combine", nil,
		upload{"qr", "qr.png", qr},
		upload{"background", "bg.gif", gif.Bytes()})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/gif", w.Header().Get("Content-Type"))
	assert.Equal(t, "2", w.Header().Get("X-Frame-Count"))

	out, err := imageio.DecodeSequence(bytes.NewReader(w.Body.Bytes()), "out.gif")
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, 40*time.Millisecond, out.Frames[1].Delay)
}

func TestConvertHandler_AnimatedToStillRejected(t *testing.T) {
	seq := sequence.Sequence{Frames: []sequence.Frame{
		{Image: solid(8, 8, color.NRGBA{0, 0, 0, 255})},
		{Image: solid(8, 8, color.NRGBA{255, 255, 255, 255})},
	}}
	var gif bytes.Buffer
	require.NoError(t, imageio.EncodeSequence(&gif, seq, "in.gif"))

	w := post(t, "/api/convert", map[string]string{"format": "png"}, upload{"image", "in.gif", gif.Bytes()})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCombineHandler_Errors(t *testing.T) {
	bg := upload{"background", "bg.png", encoded(t, solid(4, 4, color.NRGBA{A: 255}), "bg.png")}
	for name, tc := range map[string]struct {
		fields map[string]string
		files  []upload
	}{
		"missing background": {map[string]string{"text": "x"}, nil},
		"missing qr":         {nil, []upload{bg}},
		"bad contrast":       {map[string]string{"text": "x", "contrast": "0"}, []upload{bg}},
		"bad quality":        {map[string]string{"text": "x", "quality": "Q"}, []upload{bg}},
		"bad format":         {map[string]string{"text": "x", "format": "webp"}, []upload{bg}},
		"garbage upload":     {map[string]string{"text": "x"}, []upload{{"background", "bg.png", []byte("nope")}}},
	} {
		w := post(t, "/api/combine", tc.fields, tc.files...)
		assert.Equal(t, http.StatusBadRequest, w.Code, name)
	}
}

func TestConvertHandler(t *testing.T) {
	img := upload{"image", "photo.jpg", encoded(t, solid(40, 20, color.NRGBA{30, 30, 30, 255}), "photo.jpg")}
	w := post(t, "/api/convert", map[string]string{"quality": "M", "format": "bmp"}, img)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/bmp", w.Header().Get("Content-Type"))

	out := decodeBody(t, w, "out.bmp")
	assert.Equal(t, image.Rect(0, 0, 20, 10), out.Bounds())
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, out.NRGBAAt(5, 5))
}

func TestOverlayHandler_Blend(t *testing.T) {
	bg := upload{"background", "bg.png", encoded(t, solid(9, 9, color.NRGBA{0, 0, 200, 255}), "bg.png")}
	w := post(t, "/api/overlay", map[string]string{"text": "overlay"}, bg)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	out := decodeBody(t, w, "out.png")
	m := compose.Margin
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, out.NRGBAAt(m, m))
	assert.Equal(t, color.NRGBA{0, 0, 200, 255}, out.NRGBAAt(0, 0))
}

func TestOverlayHandler_Paste(t *testing.T) {
	bg := upload{"background", "bg.png", encoded(t, solid(200, 200, color.NRGBA{0, 0, 200, 255}), "bg.png")}
	w := post(t, "/api/overlay", map[string]string{"text": "p", "version": "1", "mode": "paste", "x": "10", "y": "20"}, bg)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	out := decodeBody(t, w, "out.png")
	assert.Equal(t, image.Rect(0, 0, 200, 200), out.Bounds())
	assert.Equal(t, color.NRGBA{0, 0, 200, 255}, out.NRGBAAt(5, 5))
	// quiet zone of the pasted code
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, out.NRGBAAt(11, 21))
}

func TestOverlayHandler_BadMode(t *testing.T) {
	bg := upload{"background", "bg.png", encoded(t, solid(9, 9, color.NRGBA{A: 255}), "bg.png")}
	w := post(t, "/api/overlay", map[string]string{"text": "x", "mode": "smear"}, bg)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = post(t, "/api/overlay", map[string]string{"text": "x", "mode": "paste", "opacity": "300"}, bg)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(fmt.Errorf("frame: %w", sequence.ErrEmptySequence)))
	assert.Equal(t, http.StatusBadRequest, statusFor(fmt.Errorf("x: %w", style.ErrInvalidConfig)))
	assert.Equal(t, http.StatusBadRequest, statusFor(compose.ErrDimensionMismatch))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("disk full")))
}

func TestParseVersion(t *testing.T) {
	v, detect, err := parseVersion("auto")
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.True(t, detect)

	v, detect, err = parseVersion("none")
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.False(t, detect)

	v, _, err = parseVersion("7")
	require.NoError(t, err)
	assert.Equal(t, 7, *v)

	_, _, err = parseVersion("seven")
	assert.ErrorIs(t, err, style.ErrInvalidConfig)
}
