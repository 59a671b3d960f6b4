// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package serialization saves and loads matrix weights as NumPy .npy files.
//
// SaveAll writes one param_<i>.npy file per parameter plus a MANIFEST of
// SHA-256 checksums; LoadAll verifies the manifest before copying weights
// into existing handles of the same shape.
package serialization

import (
	"io"

	"github.com/born-ml/tapegrad/internal/matrix"
	"github.com/born-ml/tapegrad/internal/serialization"
)

// ArrayError reports a malformed array file.
type ArrayError = serialization.ArrayError

// Errors reported while loading.
var (
	ErrChecksumMismatch  = serialization.ErrChecksumMismatch
	ErrUnsupportedDType  = serialization.ErrUnsupportedDType
	ErrUnsupportedRank   = serialization.ErrUnsupportedRank
	ErrMissingParameter  = serialization.ErrMissingParameter
	ErrMalformedManifest = serialization.ErrMalformedManifest
)

// Load reads one .npy array as a new matrix.
func Load(r io.Reader) (*matrix.Mat, error) { return serialization.Load(r) }

// LoadFile reads the .npy file at path.
func LoadFile(path string) (*matrix.Mat, error) { return serialization.LoadFile(path) }

// Save writes the weights of m as a float64 .npy array.
func Save(w io.Writer, m *matrix.Mat) error { return serialization.Save(w, m) }

// SaveFile writes the weights of m to path.
func SaveFile(path string, m *matrix.Mat) error { return serialization.SaveFile(path, m) }

// SaveAll writes every parameter to dir.
func SaveAll(dir string, params []*matrix.Mat) error { return serialization.SaveAll(dir, params) }

// LoadAll restores every parameter from dir.
func LoadAll(dir string, params []*matrix.Mat) error { return serialization.LoadAll(dir, params) }
