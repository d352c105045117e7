// Package errors provides structured error types for vidauth operations.
//
// Every failure the engine surfaces is a *CoreError tagged with an
// ErrorKind. Callers match on kind with IsKind or errors.Is against a
// kind-only CoreError; the message is for humans.
package errors

import (
	"errors"
	"fmt"
	"os/exec"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	KindIO ErrorKind = iota
	KindCommand
	KindFFmpeg
	KindFFprobeParse
	KindJSONParse
	// KindVideoInfo means a probe returned no usable stream data.
	KindVideoInfo
	KindConfig
	KindNoFilesFound
	KindCancelled
	// KindUnidentifiableVideo means no video ID could be derived from a filename.
	KindUnidentifiableVideo
	// KindNoBaseline means the baseline store holds no record for a video ID.
	KindNoBaseline
	// KindPayloadTooLarge means a watermark does not fit in the first frame.
	KindPayloadTooLarge
	// KindFrameTooSmall means a frame holds fewer samples than the read requires.
	KindFrameTooSmall
	// KindCorruptStore means the baseline store file could not be decoded.
	KindCorruptStore
)

var kindNames = [...]string{
	KindIO:                  "I/O error",
	KindCommand:             "Command error",
	KindFFmpeg:              "FFmpeg error",
	KindFFprobeParse:        "FFprobe parse error",
	KindJSONParse:           "JSON parse error",
	KindVideoInfo:           "Video info error",
	KindConfig:              "Configuration error",
	KindNoFilesFound:        "No files found",
	KindCancelled:           "Operation cancelled",
	KindUnidentifiableVideo: "Unidentifiable video",
	KindNoBaseline:          "No baseline",
	KindPayloadTooLarge:     "Payload too large",
	KindFrameTooSmall:       "Frame too small",
	KindCorruptStore:        "Corrupt store",
}

// String returns the human title for the kind. Reporters use it as the
// error heading.
func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown error"
	}
	return kindNames[k]
}

// CommandError describes an external tool that could not be started or
// exited non-zero. ExitCode is -1 when the process never ran.
type CommandError struct {
	Command    string
	ExitCode   int
	Stderr     string
	Underlying error
}

func (e *CommandError) Error() string {
	switch {
	case e.ExitCode < 0:
		return fmt.Sprintf("failed to execute %s: %v", e.Command, e.Underlying)
	case e.Stderr != "":
		return fmt.Sprintf("command %s failed with exit code %d: %s", e.Command, e.ExitCode, e.Stderr)
	default:
		return fmt.Sprintf("command %s failed with exit code %d", e.Command, e.ExitCode)
	}
}

func (e *CommandError) Unwrap() error { return e.Underlying }

// CoreError is the main error type for vidauth operations.
type CoreError struct {
	Kind       ErrorKind
	Message    string
	Underlying error
}

func (e *CoreError) Error() string {
	if e.Underlying == nil {
		return e.Kind.String() + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Underlying)
}

func (e *CoreError) Unwrap() error { return e.Underlying }

// Is matches any *CoreError of the same kind.
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	return ok && t.Kind == e.Kind
}

func newError(kind ErrorKind, underlying error, format string, args ...any) *CoreError {
	return &CoreError{Kind: kind, Message: fmt.Sprintf(format, args...), Underlying: underlying}
}

func NewIOError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindIO, Message: message, Underlying: underlying}
}

func newCommandError(cmdErr *CommandError) *CoreError {
	return &CoreError{Kind: KindCommand, Message: cmdErr.Error(), Underlying: cmdErr}
}

// NewCommandStartError reports a tool that could not be launched.
func NewCommandStartError(cmd string, err error) *CoreError {
	return newCommandError(&CommandError{Command: cmd, ExitCode: -1, Underlying: err})
}

// NewCommandFailedError reports a tool that exited with a non-zero status.
func NewCommandFailedError(cmd string, exitCode int, stderr string) *CoreError {
	return newCommandError(&CommandError{Command: cmd, ExitCode: exitCode, Stderr: stderr})
}

// WrapExecError classifies an error returned by exec.Cmd.Run or Wait.
func WrapExecError(cmd string, err error, stderr string) *CoreError {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return NewCommandFailedError(cmd, exitErr.ExitCode(), stderr)
	}
	return NewCommandStartError(cmd, err)
}

func NewFFmpegError(message string) *CoreError {
	return &CoreError{Kind: KindFFmpeg, Message: message}
}

func NewFFprobeParseError(message string) *CoreError {
	return &CoreError{Kind: KindFFprobeParse, Message: message}
}

func NewJSONParseError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindJSONParse, Message: message, Underlying: underlying}
}

func NewVideoInfoError(message string) *CoreError {
	return &CoreError{Kind: KindVideoInfo, Message: message}
}

func NewConfigError(message string) *CoreError {
	return &CoreError{Kind: KindConfig, Message: message}
}

func NewNoFilesFoundError(dir string) *CoreError {
	return newError(KindNoFilesFound, nil, "no suitable video files found in %s", dir)
}

func NewCancelledError() *CoreError {
	return &CoreError{Kind: KindCancelled, Message: "operation was cancelled by the user"}
}

// NewUnidentifiableVideoError reports a filename with no digit run.
func NewUnidentifiableVideoError(filename string) *CoreError {
	return newError(KindUnidentifiableVideo, nil, "no video ID found in filename %q", filename)
}

// NewNoBaselineError reports a missing baseline record.
func NewNoBaselineError(id string) *CoreError {
	return newError(KindNoBaseline, nil, "no baseline found for video ID %s", id)
}

// NewPayloadTooLargeError wraps a capacity failure from the watermark codec.
func NewPayloadTooLargeError(path string, underlying error) *CoreError {
	return newError(KindPayloadTooLarge, underlying, "watermark does not fit in first frame of %s", path)
}

// NewFrameTooSmallError wraps a short-frame failure from the watermark codec.
func NewFrameTooSmallError(path string, underlying error) *CoreError {
	return newError(KindFrameTooSmall, underlying, "first frame of %s is too small to hold the watermark", path)
}

// NewCorruptStoreError reports an undecodable baseline store.
func NewCorruptStoreError(path string, underlying error) *CoreError {
	return newError(KindCorruptStore, underlying, "baseline store %s is corrupt, starting fresh", path)
}

// IsKind reports whether any error in err's chain is a CoreError of kind.
func IsKind(err error, kind ErrorKind) bool {
	return errors.Is(err, &CoreError{Kind: kind})
}

// IsCancelled reports whether err stems from a cancelled run.
func IsCancelled(err error) bool {
	return IsKind(err, KindCancelled)
}

func IsNoFilesFound(err error) bool {
	return IsKind(err, KindNoFilesFound)
}

// IsNoBaseline reports whether err is a missing baseline record.
func IsNoBaseline(err error) bool {
	return IsKind(err, KindNoBaseline)
}
