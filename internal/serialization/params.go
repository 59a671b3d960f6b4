package serialization

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/born-ml/tapegrad/internal/matrix"
)

// ParamFileName returns the file name of the i-th parameter, param_<i>.npy.
func ParamFileName(i int) string {
	return fmt.Sprintf("param_%d.npy", i)
}

// SaveAll writes every handle to dir/param_<i>.npy (creating dir if needed)
// and records their checksums in dir/MANIFEST.
func SaveAll(dir string, params []*matrix.Mat) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save all: %w", err)
	}
	sums := make(map[string][32]byte, len(params))
	for i, p := range params {
		name := ParamFileName(i)
		path := filepath.Join(dir, name)
		if err := SaveFile(path, p); err != nil {
			return fmt.Errorf("save all: %w", err)
		}
		sum, err := checksumFile(path)
		if err != nil {
			return fmt.Errorf("save all: %w", err)
		}
		sums[name] = sum
	}

	f, err := os.Create(filepath.Join(dir, ManifestName))
	if err != nil {
		return fmt.Errorf("save all: %w", err)
	}
	bw := bufio.NewWriter(f)
	if err := writeManifest(bw, sums); err != nil {
		f.Close()
		return fmt.Errorf("save all: %w", err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("save all: %w", err)
	}
	return f.Close()
}

// LoadAll copies dir/param_<i>.npy into the weights of params[i].
//
// Every file must exist and match the shape of its handle. When dir holds a
// MANIFEST, each file is verified against its checksum before loading.
// Gradients are left untouched.
func LoadAll(dir string, params []*matrix.Mat) error {
	sums, err := loadManifest(dir)
	if err != nil {
		return fmt.Errorf("load all: %w", err)
	}

	for i, p := range params {
		name := ParamFileName(i)
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return &ArrayError{File: name, Details: fmt.Sprintf("parameter %d of %d", i, len(params)), Err: ErrMissingParameter}
		}
		if sums != nil {
			if err := verify(path, name, sums); err != nil {
				return err
			}
		}

		loaded, err := LoadFile(path)
		if err != nil {
			return fmt.Errorf("load all: %w", err)
		}
		if loaded.Shape() != p.Shape() {
			return fmt.Errorf("load all: %q: %w", name, matrix.Mismatch("load", "saved shape equal to parameter shape", p, loaded))
		}
		p.W().Copy(loaded.W())
	}
	return nil
}

// loadManifest returns nil (and no error) when dir has no manifest.
func loadManifest(dir string) (map[string][32]byte, error) {
	f, err := os.Open(filepath.Join(dir, ManifestName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readManifest(f)
}

func verify(path, name string, sums map[string][32]byte) error {
	stored, ok := sums[name]
	if !ok {
		return &ArrayError{File: name, Details: "not listed in " + ManifestName, Err: ErrChecksumMismatch}
	}
	computed, err := checksumFile(path)
	if err != nil {
		return fmt.Errorf("load all: %w", err)
	}
	if err := ValidateChecksum(computed, stored); err != nil {
		return &ArrayError{File: name, Details: "contents differ from " + ManifestName, Err: err}
	}
	return nil
}
