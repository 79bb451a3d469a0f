package freedesktop

import (
	"image"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/nfnt/resize"
)

// ImageData is a raw pixel buffer as supplied in the image-data/icon_data
// hints: packed rows of 8-bit RGB or RGBA samples.
type ImageData struct {
	Width         int32
	Height        int32
	Rowstride     int32
	HasAlpha      bool
	BitsPerSample int32
	Channels      int32
	Data          []byte
}

// maxIconEdge caps the materialized image; anything larger is downscaled
// before encoding so a client can't make the daemon write huge files.
const maxIconEdge = 256

// TempImage writes the pixel buffer as a PNG under the temp directory and
// returns its path. Buffers with unusable geometry yield false.
func TempImage(img ImageData) (string, bool) {
	decoded, ok := decode(img)
	if !ok {
		return "", false
	}
	if img.Width > maxIconEdge || img.Height > maxIconEdge {
		decoded = resize.Thumbnail(maxIconEdge, maxIconEdge, decoded, resize.Lanczos3)
	}

	path, ok := tempPath()
	if !ok {
		return "", false
	}
	f, err := os.Create(path)
	if err != nil {
		return "", false
	}
	if err := png.Encode(f, decoded); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", false
	}
	if err := f.Close(); err != nil {
		return "", false
	}
	return path, true
}

func decode(img ImageData) (image.Image, bool) {
	w, h := int(img.Width), int(img.Height)
	stride := int(img.Rowstride)
	channels := 3
	if img.HasAlpha {
		channels = 4
	}
	if w <= 0 || h <= 0 || img.BitsPerSample != 8 {
		return nil, false
	}
	if stride < w*channels {
		return nil, false
	}
	if len(img.Data) < stride*(h-1)+w*channels {
		return nil, false
	}

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := img.Data[y*stride:]
		for x := 0; x < w; x++ {
			px := row[x*channels:]
			i := out.PixOffset(x, y)
			out.Pix[i+0] = px[0]
			out.Pix[i+1] = px[1]
			out.Pix[i+2] = px[2]
			if img.HasAlpha {
				out.Pix[i+3] = px[3]
			} else {
				out.Pix[i+3] = 0xff
			}
		}
	}
	return out, true
}

const tempNameAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// tempPath picks a random unused PNG path in the temp dir, giving up after a
// few collisions.
func tempPath() (string, bool) {
	for tries := 0; tries < 3; tries++ {
		name := make([]byte, 8)
		for i := range name {
			name[i] = tempNameAlphabet[rand.Intn(len(tempNameAlphabet))]
		}
		path := filepath.Join(os.TempDir(), string(name)+".png")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, true
		}
	}
	return "", false
}
