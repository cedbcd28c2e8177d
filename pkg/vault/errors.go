package vault

import "errors"

// Failure kinds, one sentinel per diagnosable cause so callers can present a
// precise message with errors.Is. Format and completeness failures are fatal;
// a file-checksum mismatch after full extraction is not an error at all but a
// verdict on the DecodeResult.
var (
	// ErrConfig indicates an invalid engine configuration.
	ErrConfig = errors.New("invalid configuration")
	// ErrCodecUnsupported indicates no usable encoder configuration; raised
	// before any frame is streamed.
	ErrCodecUnsupported = errors.New("no supported encoder configuration")
	// ErrNotVault indicates the stream does not start with the format magic.
	ErrNotVault = errors.New("not a framevault stream")
	// ErrVersion indicates a container version this build does not speak.
	ErrVersion = errors.New("container version mismatch")
	// ErrHeaderLength indicates a header length outside sane bounds.
	ErrHeaderLength = errors.New("corrupt header length")
	// ErrHeaderChecksum indicates the header failed its CRC.
	ErrHeaderChecksum = errors.New("header integrity failure")
	// ErrHeaderFields indicates a parsed header missing required fields.
	ErrHeaderFields = errors.New("header missing required fields")
	// ErrTruncated indicates the video ran out of frames before the declared
	// payload length was reached.
	ErrTruncated = errors.New("stream truncated before payload completed")
	// ErrCancelled is the distinct terminal outcome of a user cancellation.
	ErrCancelled = errors.New("operation cancelled")
)
