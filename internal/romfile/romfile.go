// Package romfile loads the two binary images the emulator needs at
// startup: the boot ROM and the cartridge image. Both are read fully into
// memory once; there is no hot-swapping.
package romfile

import (
	"fmt"
	"os"

	"goba/internal/memory"
)

// LoadBIOS reads a boot ROM image from path. An empty file, or one shorter
// than the 16 KiB boot ROM, is rejected as truncated; an oversized file is
// accepted and memory.BIOS.Load truncates it.
func LoadBIOS(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read BIOS file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("BIOS file %q is empty", path)
	}
	if len(data) < memory.BIOSSize {
		return nil, fmt.Errorf("BIOS file %q is truncated: %d bytes, want %d", path, len(data), memory.BIOSSize)
	}
	return data, nil
}

// LoadROM reads a cartridge image from path.
func LoadROM(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read ROM file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("ROM file %q is empty", path)
	}
	return data, nil
}
