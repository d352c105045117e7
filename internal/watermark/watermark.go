// Package watermark hides and recovers a text payload in the least
// significant bits of a single video frame.
//
// Each payload byte is written as 8 bits, most significant first, one bit
// per sample byte, starting at the first sample of the frame and continuing
// in raster order through the channels of each pixel. All other bits of the
// frame are left untouched.
package watermark

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultMaxChars is the number of characters read by blind extraction
// when no length is given.
const DefaultMaxChars = 256

var (
	// ErrPayloadTooLarge is returned when the payload needs more bits than
	// the frame has samples.
	ErrPayloadTooLarge = errors.New("watermark payload exceeds frame capacity")

	// ErrFrameTooSmall is returned when a read needs more samples than the
	// frame has.
	ErrFrameTooSmall = errors.New("frame too small for watermark read")
)

// TextToBits expands each byte of text into 8 bits, most significant first.
// Each element of the result is 0 or 1.
func TextToBits(text string) []byte {
	bits := make([]byte, 0, len(text)*8)
	for i := 0; i < len(text); i++ {
		c := text[i]
		for shift := 7; shift >= 0; shift-- {
			bits = append(bits, (c>>shift)&1)
		}
	}
	return bits
}

// BitsToText packs bits back into bytes, 8 at a time. A trailing partial
// group is ignored.
func BitsToText(bits []byte) string {
	n := len(bits) / 8
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		var c byte
		for _, b := range bits[i*8 : i*8+8] {
			c = c<<1 | (b & 1)
		}
		buf[i] = c
	}
	return string(buf)
}

// Capacity returns how many whole characters frame can carry.
func Capacity(frame Frame) int {
	return frame.Len() / 8
}

// Embed returns a copy of frame whose first len(text)*8 samples carry the
// payload in their least significant bit. The input frame is not modified.
func Embed(frame Frame, text string) (Frame, error) {
	bits := TextToBits(text)
	if len(bits) > frame.Len() {
		return Frame{}, fmt.Errorf("%w: %d bits needed, %d available", ErrPayloadTooLarge, len(bits), frame.Len())
	}

	out := frame.Clone()
	for i, bit := range bits {
		out.Pix[i] = (out.Pix[i] &^ 1) | bit
	}
	return out, nil
}

// readBits collects the least significant bit of the first n samples.
func readBits(frame Frame, n int) ([]byte, error) {
	if n > frame.Len() {
		return nil, fmt.Errorf("%w: %d bits requested, %d available", ErrFrameTooSmall, n, frame.Len())
	}
	bits := make([]byte, n)
	for i := range bits {
		bits[i] = frame.Pix[i] & 1
	}
	return bits, nil
}

// Verify reports whether frame carries exactly the expected text.
func Verify(frame Frame, expected string) (bool, error) {
	bits, err := readBits(frame, len(expected)*8)
	if err != nil {
		return false, err
	}
	return BitsToText(bits) == expected, nil
}

// ExtractBlind reads maxChars characters from frame without knowing the
// payload, then strips trailing NUL bytes and surrounding whitespace. A
// non-positive maxChars selects DefaultMaxChars. Garbage input decodes to
// garbage text, never an error.
func ExtractBlind(frame Frame, maxChars int) (string, error) {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	bits, err := readBits(frame, maxChars*8)
	if err != nil {
		return "", err
	}
	text := strings.TrimRight(BitsToText(bits), "\x00")
	return strings.TrimSpace(text), nil
}
