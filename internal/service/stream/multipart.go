package stream

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
)

// Boundary separates frames in the multipart/x-mixed-replace response.
const Boundary = "frame"

// ContentType is the response content type of a frame stream.
const ContentType = "multipart/x-mixed-replace; boundary=" + Boundary

var partHeader = []byte("--" + Boundary + "\r\nContent-Type: image/jpeg\r\n\r\n")

// writeFrame writes one complete chunk: boundary, header, JPEG body and the
// trailing CRLF.
func writeFrame(w io.Writer, img image.Image, quality int) error {
	var buf bytes.Buffer
	buf.Write(partHeader)
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	buf.WriteString("\r\n")

	_, err := w.Write(buf.Bytes())
	return err
}
