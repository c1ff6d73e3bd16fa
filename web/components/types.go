package components

// Endpoint describes one API route listed on the index page.
type Endpoint struct {
    Method  string
    Path    string
    Summary string
    Params  []string
}

// Endpoints is the public API surface, in display order.
var Endpoints = []Endpoint{
    {Method: "GET", Path: "/api/qr", Summary: "Render a plain QR code from text", Params: []string{"text", "version"}},
    {Method: "POST", Path: "/api/combine", Summary: "Decorate a QR code with a background image or animation", Params: []string{"background", "qr", "text", "colorized", "contrast", "brightness", "dotSize", "resolution", "quality", "dither", "version", "format"}},
    {Method: "POST", Path: "/api/convert", Summary: "Halftone or binarize an image or animation", Params: []string{"image", "colorized", "contrast", "brightness", "dotSize", "resolution", "quality", "dither", "format"}},
    {Method: "POST", Path: "/api/overlay", Summary: "Stamp a QR code onto artwork", Params: []string{"background", "qr", "text", "mode", "x", "y", "opacity", "format"}},
    {Method: "GET", Path: "/healthz", Summary: "Liveness probe"},
}
