package resample

import (
	"fmt"
	"strings"
	"sync"
)

// Kind selects a resampling kernel.
type Kind uint8

const (
	// Bilinear blends the 4 neighbouring source pixels.
	Bilinear Kind = iota

	// Lanczos applies a windowed-sinc filter over 2a samples per axis.
	Lanczos

	// Nearest picks the closest source pixel.
	Nearest

	// Bicubic applies a Catmull-Rom filter over a 4x4 neighbourhood.
	Bicubic
)

// String returns the lowercase kernel name.
func (k Kind) String() string {
	switch k {
	case Bilinear:
		return "bilinear"
	case Lanczos:
		return "lanczos"
	case Nearest:
		return "nearest"
	case Bicubic:
		return "bicubic"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind resolves a kernel name, ignoring case and surrounding spaces.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bilinear":
		return Bilinear, nil
	case "lanczos":
		return Lanczos, nil
	case "nearest":
		return Nearest, nil
	case "bicubic":
		return Bicubic, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedKernel, name)
	}
}

// Sampler computes one destination pixel from the source image.
// Implementations must be pure: they only read src.
type Sampler func(src *Image, dstX, dstY, dstW, dstH int) Color

var (
	samplersMu sync.RWMutex
	samplers   = map[Kind]Sampler{
		Bilinear: SampleBilinear,
		Lanczos:  mustLanczos(DefaultLanczosWindow),
		Nearest:  SampleNearest,
		Bicubic:  SampleBicubic,
	}
)

// Register installs s as the sampler for kind, replacing any previous one.
func Register(kind Kind, s Sampler) {
	samplersMu.Lock()
	defer samplersMu.Unlock()
	samplers[kind] = s
}

// Lookup returns the sampler registered for kind.
func Lookup(kind Kind) (Sampler, error) {
	samplersMu.RLock()
	defer samplersMu.RUnlock()
	s, ok := samplers[kind]
	if !ok || s == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKernel, kind)
	}
	return s, nil
}

// sourceCoord maps the centre of destination pixel d onto the source axis.
func sourceCoord(d, srcSize, dstSize int) float64 {
	return (float64(d)+0.5)*float64(srcSize)/float64(dstSize) - 0.5
}
