package gzheader

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNotGzip reports a file that does not start with a gzip member header.
var ErrNotGzip = errors.New("not a gzip member")

// Gzip header flag bits (RFC 1952).
const (
	flagHCRC    = 0x02
	flagExtra   = 0x04
	flagName    = 0x08
	flagComment = 0x10
)

// header is one parsed gzip member header.
type header struct {
	fixed   [10]byte
	flags   byte
	mtime   uint32
	extra   []byte // raw XLEN + payload
	name    string
	comment []byte // raw bytes including the NUL terminator
	hasHCRC bool
}

// needsScrub reports whether rewriting would change anything.
func (h *header) needsScrub() bool {
	return h.mtime != 0 || h.flags&flagName != 0
}

// describe names the fields a scrub would touch.
func (h *header) describe() string {
	var parts []string
	if h.mtime != 0 {
		parts = append(parts, fmt.Sprintf("MTIME=%d", h.mtime))
	}
	if h.flags&flagName != 0 {
		parts = append(parts, "FNAME")
	}
	if h.hasHCRC {
		parts = append(parts, "FHCRC(removal)")
	}
	return strings.Join(parts, ", ")
}

// parseHeader consumes the member header from r, leaving the reader at the
// start of the compressed payload.
func parseHeader(r *bufio.Reader) (*header, error) {
	var h header
	if _, err := io.ReadFull(r, h.fixed[:]); err != nil {
		return nil, fmt.Errorf("%w: short header", ErrNotGzip)
	}
	if h.fixed[0] != 0x1f || h.fixed[1] != 0x8b || h.fixed[2] != 0x08 {
		return nil, ErrNotGzip
	}
	h.flags = h.fixed[3]
	h.mtime = binary.LittleEndian.Uint32(h.fixed[4:8])

	if h.flags&flagExtra != 0 {
		lenBytes := make([]byte, 2)
		if _, err := io.ReadFull(r, lenBytes); err != nil {
			return nil, fmt.Errorf("truncated EXTRA length: %w", err)
		}
		xlen := binary.LittleEndian.Uint16(lenBytes)
		payload := make([]byte, xlen)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, fmt.Errorf("truncated EXTRA field: %w", err)
		}
		h.extra = append(lenBytes, payload...)
	}
	if h.flags&flagName != 0 {
		name, err := r.ReadBytes(0)
		if err != nil {
			return nil, fmt.Errorf("truncated FNAME field: %w", err)
		}
		h.name = string(bytes.TrimSuffix(name, []byte{0}))
	}
	if h.flags&flagComment != 0 {
		comment, err := r.ReadBytes(0)
		if err != nil {
			return nil, fmt.Errorf("truncated FCOMMENT field: %w", err)
		}
		h.comment = comment
	}
	if h.flags&flagHCRC != 0 {
		h.hasHCRC = true
		if _, err := io.ReadFull(r, make([]byte, 2)); err != nil {
			return nil, fmt.Errorf("truncated FHCRC field: %w", err)
		}
	}
	return &h, nil
}

// writeScrubbed emits the neutral header followed by the remaining stream.
func (h *header) writeScrubbed(w io.Writer, payload io.Reader) error {
	fixed := h.fixed
	fixed[3] = h.flags &^ (flagName | flagHCRC)
	fixed[4], fixed[5], fixed[6], fixed[7] = 0, 0, 0, 0

	if _, err := w.Write(fixed[:]); err != nil {
		return err
	}
	if len(h.extra) > 0 {
		if _, err := w.Write(h.extra); err != nil {
			return err
		}
	}
	if len(h.comment) > 0 {
		if _, err := w.Write(h.comment); err != nil {
			return err
		}
	}
	_, err := io.Copy(w, payload)
	return err
}

// Inspect parses the member header of path without modifying anything. It
// returns whether a scrub would change the file and a description of the
// offending fields.
func Inspect(path string) (bool, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, "", err
	}
	defer f.Close()

	h, err := parseHeader(bufio.NewReader(f))
	if err != nil {
		return false, "", err
	}
	return h.needsScrub(), h.describe(), nil
}

// Scrub rewrites path with a neutral header. It reports false without
// touching the file when the header is already clean.
func Scrub(path string) (bool, error) {
	in, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer in.Close()

	reader := bufio.NewReader(in)
	h, err := parseHeader(reader)
	if err != nil {
		return false, err
	}
	if !h.needsScrub() {
		return false, nil
	}

	tmp := path + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return false, err
	}
	if err := h.writeScrubbed(out, reader); err != nil {
		out.Close()
		os.Remove(tmp)
		return false, fmt.Errorf("rewrite header: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return false, err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return false, fmt.Errorf("replace file: %w", err)
	}
	return true, nil
}
