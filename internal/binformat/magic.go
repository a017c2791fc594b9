// Package binformat implements the external binary stop/route format
// specified in spec.md §6: the on-disk format a preprocessor (e.g. a
// GTFS-to-binary converter, itself out of scope here) produces and this
// engine's loader consumes.
package binformat

import (
	"bufio"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// FormatVersion distinguishes the V1 (unsorted trips, per-trip leading
// trip id) and V2 (pre-sorted trips, trip ids and deltas split into their
// own arrays) route-file encodings. Stop files are layout-identical across
// versions; only the routes companion file differs.
type FormatVersion int

const (
	V1 FormatVersion = 1
	V2 FormatVersion = 2
)

var (
	stopsMagicV1  = [4]byte{'R', 'S', 'T', 'S'}
	stopsMagicV2  = [4]byte{'R', 'S', 'T', '2'}
	routesMagicV1 = [4]byte{'R', 'R', 'T', 'S'}
	routesMagicV2 = [4]byte{'R', 'R', 'T', '2'}

	zstdMagic = [4]byte{0x28, 0xB5, 0x2F, 0xFD}
)

// openStream wraps r in a *bufio.Reader and transparently unwraps a
// leading zstd frame, peek-based, without consuming bytes the caller
// didn't ask for. Operators may ship either a raw binary stream or one
// zstd-compressed with github.com/klauspost/compress.
func openStream(r io.Reader) (*bufio.Reader, func() error, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	head, err := br.Peek(4)
	if err != nil && err != io.EOF {
		return nil, nil, errors.Wrap(err, "peeking stream header")
	}
	if len(head) == 4 && [4]byte{head[0], head[1], head[2], head[3]} == zstdMagic {
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening zstd stream")
		}
		rc := dec.IOReadCloser()
		return bufio.NewReaderSize(rc, 64*1024), rc.Close, nil
	}
	return br, func() error { return nil }, nil
}

func peekMagic(br *bufio.Reader) ([4]byte, error) {
	head, err := br.Peek(4)
	if err != nil {
		return [4]byte{}, errors.Wrap(err, "reading magic: truncated stream")
	}
	return [4]byte{head[0], head[1], head[2], head[3]}, nil
}

func discard(br *bufio.Reader, n int) error {
	_, err := br.Discard(n)
	if err != nil {
		return errors.Wrap(err, "truncated stream")
	}
	return nil
}
