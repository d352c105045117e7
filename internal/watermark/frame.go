package watermark

import "fmt"

// Frame is one decoded picture in packed interleaved layout. Pix holds
// Height rows of Width*Channels bytes in raster order.
type Frame struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

// NewFrame allocates a zeroed frame.
func NewFrame(width, height, channels int) Frame {
	return Frame{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]byte, width*height*channels),
	}
}

// Len returns the number of sample bytes, which is the bit capacity.
func (f Frame) Len() int {
	return len(f.Pix)
}

// Validate checks that Pix matches the declared geometry.
func (f Frame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 || f.Channels <= 0 {
		return fmt.Errorf("invalid frame geometry %dx%dx%d", f.Width, f.Height, f.Channels)
	}
	if want := f.Width * f.Height * f.Channels; len(f.Pix) != want {
		return fmt.Errorf("frame holds %d bytes, geometry %dx%dx%d needs %d", len(f.Pix), f.Width, f.Height, f.Channels, want)
	}
	return nil
}

// Clone returns a deep copy of f.
func (f Frame) Clone() Frame {
	c := f
	c.Pix = append([]byte(nil), f.Pix...)
	return c
}
