package serialization

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/tapegrad/internal/matrix"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// Load reads one .npy array from r into a new handle with a zero gradient.
func Load(r io.Reader) (*matrix.Mat, error) {
	return load(r, "")
}

// LoadFile reads the .npy file at path into a new handle.
func LoadFile(path string) (*matrix.Mat, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	defer f.Close()
	return load(bufio.NewReader(f), path)
}

// Save writes the weights of m to w as a C-ordered float64 .npy array.
func Save(w io.Writer, m *matrix.Mat) error {
	if err := npyio.Write(w, m.W()); err != nil {
		return fmt.Errorf("save %s: %w", m, err)
	}
	return nil
}

// SaveFile writes the weights of m to a .npy file at path, replacing it.
func SaveFile(path string, m *matrix.Mat) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	bw := bufio.NewWriter(f)
	if err := Save(bw, m); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("save: %w", err)
	}
	return f.Close()
}

func load(r io.Reader, file string) (*matrix.Mat, error) {
	nr, err := npyio.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	descr := nr.Header.Descr

	rows, cols, err := arrayDims(descr.Shape)
	if err != nil {
		return nil, &ArrayError{File: file, Details: fmt.Sprintf("shape %v", descr.Shape), Err: err}
	}

	var data []float64
	switch descr.Type {
	case "<f8":
		data = make([]float64, rows*cols)
		if err := nr.Read(&data); err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
	case "<f4":
		f32 := make([]float32, rows*cols)
		if err := nr.Read(&f32); err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
		data = make([]float64, len(f32))
		for i, v := range f32 {
			data[i] = float64(v)
		}
	default:
		return nil, &ArrayError{File: file, Details: fmt.Sprintf("dtype %q (want <f4 or <f8)", descr.Type), Err: ErrUnsupportedDType}
	}

	if rows*cols == 0 {
		return nil, &ArrayError{File: file, Details: fmt.Sprintf("empty array of shape %v", descr.Shape), Err: matrix.ErrInvalidShape}
	}
	if descr.Fortran && rows > 1 && cols > 1 {
		// Column-major data read as a cols x rows row-major matrix is the transpose.
		w := mat.DenseCopyOf(mat.NewDense(cols, rows, data).T())
		return matrix.FromDense(w), nil
	}
	return matrix.FromSlice(rows, cols, data)
}

// arrayDims maps an npy shape to matrix dimensions: () is 1 x 1 and (n,) is n x 1.
func arrayDims(shape []int) (int, int, error) {
	switch len(shape) {
	case 0:
		return 1, 1, nil
	case 1:
		return shape[0], 1, nil
	case 2:
		return shape[0], shape[1], nil
	default:
		return 0, 0, ErrUnsupportedRank
	}
}
