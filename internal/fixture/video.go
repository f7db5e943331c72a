package fixture

import (
	"fmt"
	"os"
	"sync"

	"github.com/Noofbiz/openego/ndarray"
	"github.com/Noofbiz/openego/video"
)

// Videos is an in-memory video.Reader. Frames are synthesized so that pixel
// (f, y, x) holds (f%256, y%256, x%256), which lets tests check which frames
// were decoded.
type Videos struct {
	// Default is returned for paths without an entry in Infos.
	Default video.Info
	Infos   map[string]video.Info

	mu     sync.Mutex
	Probes int
	Decode int
}

// Info implements video.Reader. Paths that do not exist on disk fail with
// video.ErrOpen.
func (v *Videos) Info(path string) (video.Info, error) {
	v.mu.Lock()
	v.Probes++
	v.mu.Unlock()
	if _, err := os.Stat(path); err != nil {
		return video.Info{}, fmt.Errorf("%w: %s", video.ErrOpen, path)
	}
	if info, ok := v.Infos[path]; ok {
		return info, nil
	}
	return v.Default, nil
}

// Frames implements video.Reader.
func (v *Videos) Frames(path string, r *video.FrameRange) (*ndarray.Array[uint8], error) {
	info, err := v.Info(path)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	v.Decode++
	v.mu.Unlock()

	start, end := r.Resolve(info.FrameCount)
	h, w := info.Height, info.Width
	out := ndarray.Zeros[uint8](end-start, h, w, 3)
	data := out.Data()
	i := 0
	for f := start; f < end; f++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				data[i], data[i+1], data[i+2] = uint8(f), uint8(y), uint8(x)
				i += 3
			}
		}
	}
	return out, nil
}
