package lottie

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Minimal .lottie container reader. A .lottie file is a ZIP archive
// holding one animation.json entry (plus theme/image extras this
// engine does not use). This is deliberately not a general archive
// reader: entries must be stored uncompressed, and only the first
// entry whose path contains animation.json is honored.

const (
	// containerEntryName is the path substring that identifies the
	// animation entry inside the archive.
	containerEntryName = "animation.json"

	zipLocalHeaderLen  = 30
	zipCentralDirLen   = 46
	zipEndOfCentralLen = 22
)

var (
	zipMagic           = []byte{0x50, 0x4B, 0x03, 0x04} // "PK\x03\x04"
	zipCentralDirSig   = []byte{0x50, 0x4B, 0x01, 0x02}
	zipEndOfCentralSig = []byte{0x50, 0x4B, 0x05, 0x06}
)

// isZipContainer reports whether the payload begins with the ZIP
// local-header magic.
func isZipContainer(data []byte) bool {
	return len(data) >= len(zipMagic) && bytes.Equal(data[:len(zipMagic)], zipMagic)
}

// extractContainerEntry returns the raw JSON bytes of the archive's
// animation.json entry.
func extractContainerEntry(data []byte) ([]byte, error) {
	if !isZipContainer(data) {
		return nil, fmt.Errorf("missing ZIP signature")
	}
	eocd, err := findEndOfCentralDir(data)
	if err != nil {
		return nil, err
	}
	cdOffset := binary.LittleEndian.Uint32(data[eocd+16:])
	entries := binary.LittleEndian.Uint16(data[eocd+10:])
	if int(cdOffset) >= len(data) {
		return nil, fmt.Errorf("central directory offset %d out of range", cdOffset)
	}

	pos := int(cdOffset)
	for i := 0; i < int(entries); i++ {
		if pos+zipCentralDirLen > len(data) || !bytes.Equal(data[pos:pos+4], zipCentralDirSig) {
			return nil, fmt.Errorf("truncated central directory at entry %d", i)
		}
		method := binary.LittleEndian.Uint16(data[pos+10:])
		compressedSize := binary.LittleEndian.Uint32(data[pos+20:])
		nameLen := int(binary.LittleEndian.Uint16(data[pos+28:]))
		extraLen := int(binary.LittleEndian.Uint16(data[pos+30:]))
		commentLen := int(binary.LittleEndian.Uint16(data[pos+32:]))
		localOffset := int(binary.LittleEndian.Uint32(data[pos+42:]))
		if pos+zipCentralDirLen+nameLen > len(data) {
			return nil, fmt.Errorf("truncated entry name at entry %d", i)
		}
		name := string(data[pos+zipCentralDirLen : pos+zipCentralDirLen+nameLen])

		if bytes.Contains([]byte(name), []byte(containerEntryName)) {
			if method != 0 {
				return nil, fmt.Errorf("%w: entry %q uses method %d", ErrCompressedEntry, name, method)
			}
			return readStoredEntry(data, localOffset, int(compressedSize), name)
		}
		pos += zipCentralDirLen + nameLen + extraLen + commentLen
	}
	return nil, ErrNoEntry
}

// findEndOfCentralDir scans backward from the end of the buffer for
// the end-of-central-directory signature. The record has a variable
// length comment, so the signature can sit up to 64 KiB + 22 bytes
// from the end.
func findEndOfCentralDir(data []byte) (int, error) {
	if len(data) < zipEndOfCentralLen {
		return 0, fmt.Errorf("buffer too small for an archive (%d bytes)", len(data))
	}
	lo := len(data) - zipEndOfCentralLen - 0xFFFF
	if lo < 0 {
		lo = 0
	}
	for pos := len(data) - zipEndOfCentralLen; pos >= lo; pos-- {
		if bytes.Equal(data[pos:pos+4], zipEndOfCentralSig) {
			return pos, nil
		}
	}
	return 0, fmt.Errorf("end of central directory not found")
}

// readStoredEntry slices an entry's bytes out of the archive, skipping
// past the local header's own name and extra fields. Sizes come from
// the central directory, which is authoritative when local headers use
// streaming descriptors.
func readStoredEntry(data []byte, localOffset, size int, name string) ([]byte, error) {
	if localOffset+zipLocalHeaderLen > len(data) || !bytes.Equal(data[localOffset:localOffset+4], zipMagic) {
		return nil, fmt.Errorf("entry %q: bad local header offset %d", name, localOffset)
	}
	nameLen := int(binary.LittleEndian.Uint16(data[localOffset+26:]))
	extraLen := int(binary.LittleEndian.Uint16(data[localOffset+28:]))
	start := localOffset + zipLocalHeaderLen + nameLen + extraLen
	if start+size > len(data) {
		return nil, fmt.Errorf("entry %q: data truncated (%d bytes past end)", name, start+size-len(data))
	}
	return data[start : start+size], nil
}
