// Package serialization reads and writes matrix handles as NumPy .npy arrays.
//
// Only 1-D and 2-D little-endian float32/float64 arrays are accepted.
// Fortran-ordered arrays are transposed into row-major buffers on load and
// 1-D arrays load as n x 1 columns. Arrays are always written as C-ordered
// float64.
//
// Parameter sets are stored as a directory of param_<i>.npy files plus a
// MANIFEST of SHA-256 checksums, verified on load:
//
//	if err := serialization.SaveAll("checkpoint", params); err != nil {
//	    log.Fatal(err)
//	}
//	// later, with handles of the same shapes:
//	if err := serialization.LoadAll("checkpoint", params); err != nil {
//	    log.Fatal(err)
//	}
package serialization
