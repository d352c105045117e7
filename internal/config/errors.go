// Package config provides configuration types and defaults for vidauth.
package config

import "errors"

// Sentinel errors for configuration validation.
var (
	// ErrInvalidCodec indicates an unknown lossless output codec.
	ErrInvalidCodec = errors.New("invalid output codec")

	// ErrInvalidHashAlgorithm indicates an unsupported digest algorithm.
	ErrInvalidHashAlgorithm = errors.New("invalid hash algorithm")

	// ErrInvalidProbe indicates an unknown metadata probe mode.
	ErrInvalidProbe = errors.New("invalid metadata probe")

	// ErrInvalidSubject indicates an unknown record subject.
	ErrInvalidSubject = errors.New("invalid record subject")

	// ErrInvalidTemplate indicates an unusable watermark template.
	ErrInvalidTemplate = errors.New("invalid watermark template")

	// ErrInvalidMaxChars indicates a blind extraction length out of range.
	ErrInvalidMaxChars = errors.New("blind extraction length out of range")

	// ErrMissingPath indicates a required path was left empty.
	ErrMissingPath = errors.New("required path not set")
)
