package fileops

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
)

// versionBanner matches the banner evalresp writes at the top of verbose output.
var versionBanner = regexp.MustCompile(`(EVALRESP RESPONSE OUTPUT V)\d.+( >>)`)

// VersionPlaceholder replaces the version number in scrubbed banners.
const VersionPlaceholder = "ROBOT"

// ScrubVersion returns line with any banner version replaced by the placeholder.
func ScrubVersion(line string) string {
	return versionBanner.ReplaceAllString(line, "${1}"+VersionPlaceholder+"${2}")
}

// ClearVersion rewrites path in place with every version banner scrubbed.
//
// The new content is written to a temporary file in the same directory and
// renamed over path only when complete; on failure path is left untouched.
func ClearVersion(path string) (err error) {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	reader := bufio.NewReader(in)
	writer := bufio.NewWriter(tmp)
	for {
		line, readErr := reader.ReadString('\n')
		if line != "" {
			if _, err := writer.WriteString(ScrubVersion(line)); err != nil {
				return fmt.Errorf("write %s: %w", tmp.Name(), err)
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return fmt.Errorf("read %s: %w", path, readErr)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	in.Close()

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
