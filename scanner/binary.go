package scanner

import (
	"bytes"
	"debug/dwarf"
	"debug/elf"
	"debug/macho"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// openDWARF loads the DWARF data from an ELF or Mach-O binary.
func openDWARF(path string) (*dwarf.Data, error) {
	if f, err := elf.Open(path); err == nil {
		defer f.Close()
		d, err := f.DWARF()
		if err != nil {
			return nil, fmt.Errorf("reading DWARF from ELF %s: %w", path, err)
		}
		return d, nil
	}

	if f, err := macho.Open(path); err == nil {
		defer f.Close()
		d, err := f.DWARF()
		if err != nil {
			return nil, fmt.Errorf("reading DWARF from Mach-O %s: %w", path, err)
		}
		return d, nil
	}

	return nil, fmt.Errorf("unsupported binary format: %s", path)
}

var elfMagic = []byte("\x7fELF")

// Mach-O magic numbers, both byte orders, plus the fat/universal header.
var machoMagics = []uint32{0xfeedface, 0xfeedfacf, 0xcefaedfe, 0xcffaedfe, 0xcafebabe}

// IsBinary reports whether the file at path starts with an ELF or
// Mach-O magic number.
func IsBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return false
	}

	if bytes.Equal(magic[:], elfMagic) {
		return true
	}
	word := binary.BigEndian.Uint32(magic[:])
	for _, m := range machoMagics {
		if word == m {
			return true
		}
	}
	return false
}
