package fixture

import (
	"fmt"
	"io"
	"os"

	"github.com/roach88/respcheck/internal/config"
)

// Linker installs a fixture file at a destination path.
//
// Implementations must leave dest reading exactly like source.
type Linker interface {
	Link(source, dest string) error
}

// SymlinkLinker installs fixtures as symbolic links, so large data files are
// never duplicated.
type SymlinkLinker struct{}

// Link creates dest as a symbolic link to source.
func (SymlinkLinker) Link(source, dest string) error {
	if err := os.Symlink(source, dest); err != nil {
		return fmt.Errorf("symlink %s: %w", dest, err)
	}
	return nil
}

// CopyLinker installs fixtures as byte copies, for filesystems or platforms
// without symbolic links.
type CopyLinker struct{}

// Link copies source to dest, keeping the permission bits.
func (CopyLinker) Link(source, dest string) (err error) {
	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open %s: %w", source, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", source, err)
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", dest, closeErr)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s to %s: %w", source, dest, err)
	}
	return nil
}

// NewLinker returns the linker for a configured link mode.
func NewLinker(mode string) (Linker, error) {
	switch mode {
	case config.LinkSymlink, "":
		return SymlinkLinker{}, nil
	case config.LinkCopy:
		return CopyLinker{}, nil
	default:
		return nil, fmt.Errorf("unknown link mode %q: must be %q or %q", mode, config.LinkSymlink, config.LinkCopy)
	}
}
