// Package filemode implements the file modes used by git's object model:
// the subset of POSIX permission bits git actually tracks in trees and the
// index (regular, executable, symlink, gitlink and directory).
package filemode

import (
	"errors"
	"fmt"
	"os"
)

// A FileMode represents the kind of tree entries used by git. It resembles
// os.FileMode but is reduced to the handful of values git persists.
type FileMode uint32

const (
	Empty      FileMode = 0
	Dir        FileMode = 0040000
	Regular    FileMode = 0100644
	Deprecated FileMode = 0100664
	Executable FileMode = 0100755
	Symlink    FileMode = 0120000
	Submodule  FileMode = 0160000
)

// ErrMalformedMode is returned by New when the string cannot be parsed as a
// valid octal file mode.
var ErrMalformedMode = errors.New("malformed mode")

// New returns a new FileMode from an octal string representation, as found
// in a tree object or the index.
func New(s string) (FileMode, error) {
	m := FileMode(0)
	err := m.UnmarshalText([]byte(s))
	return m, err
}

// NewFromOSFileMode returns a FileMode from an os.FileMode, as reported by
// the local filesystem.
func NewFromOSFileMode(m os.FileMode) (FileMode, error) {
	if m.IsRegular() && isSetTemporaryOrIrregular(m) {
		return Empty, fmt.Errorf("no equivalent file mode: %q", m)
	}

	switch {
	case m.IsRegular() && isExecutable(m):
		return Executable, nil
	case m.IsRegular():
		return Regular, nil
	case m.IsDir():
		return Dir, nil
	case m&os.ModeSymlink != 0:
		return Symlink, nil
	case m&os.ModeSocket != 0, m&os.ModeNamedPipe != 0, m&os.ModeDevice != 0, m&os.ModeCharDevice != 0:
		return Empty, fmt.Errorf("no equivalent file mode: %q", m)
	}

	return Empty, fmt.Errorf("unsupported file mode: %q", m)
}

func isExecutable(m os.FileMode) bool {
	return m&0111 != 0
}

func isSetTemporaryOrIrregular(m os.FileMode) bool {
	return m&(os.ModeTemporary|os.ModeIrregular) != 0
}

// Bytes returns the FileMode's zero-padded octal representation.
func (m FileMode) Bytes() []byte {
	return []byte(m.String())
}

// IsMalformed returns whether the FileMode shows some malformation.
func (m FileMode) IsMalformed() bool {
	switch m {
	case Dir, Regular, Deprecated, Executable, Symlink, Submodule:
		return false
	default:
		return true
	}
}

// String returns the FileMode's zero-padded octal representation.
func (m FileMode) String() string {
	return fmt.Sprintf("%07o", uint32(m))
}

// IsRegular returns if the FileMode represents a regular file.
func (m FileMode) IsRegular() bool {
	return m == Regular || m == Deprecated
}

// IsExecutable returns if the FileMode represents an executable file.
func (m FileMode) IsExecutable() bool {
	return m == Executable
}

// IsFile returns if the FileMode represents a file-like entry (regular,
// executable or symlink), false otherwise.
func (m FileMode) IsFile() bool {
	return m == Regular || m == Deprecated || m == Executable || m == Symlink
}

// IsMissing reports whether the mode represents the absence of an entry
// (the raw mode reported by a tree walk iterator for a side that does not
// contain the path).
func (m FileMode) IsMissing() bool {
	return m == Empty
}

// ToOSFileMode returns the equivalent os.FileMode.
func (m FileMode) ToOSFileMode() (os.FileMode, error) {
	switch m {
	case Dir, Submodule:
		return os.ModePerm | os.ModeDir, nil
	case Symlink:
		return os.ModePerm | os.ModeSymlink, nil
	case Executable:
		return 0755, nil
	case Regular, Deprecated:
		return 0644, nil
	}

	return 0, fmt.Errorf("malformed mode (%vo)", uint32(m))
}

// UnmarshalText parses an octal textual representation into m.
func (m *FileMode) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		return ErrMalformedMode
	}

	a := int64(0)
	for _, c := range text {
		digit := c - '0'
		if digit < 0 || digit > 7 {
			return ErrMalformedMode
		}

		a = a*8 + int64(digit)
	}

	*m = FileMode(a)
	return nil
}

// MarshalText implements the encoding.TextMarshaler interface.
func (m FileMode) MarshalText() ([]byte, error) {
	return m.Bytes(), nil
}
