package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/born-ml/tapegrad/autodiff"
	"github.com/born-ml/tapegrad/matrix"
)

var errGradcheckFailed = errors.New("gradient check failed")

// check is one catalog entry: input shapes and a forward builder.
type check struct {
	name   string
	shapes []matrix.Shape
	f      func(g *autodiff.Graph, in []*matrix.Mat) (*matrix.Mat, error)
}

func unary(fn func(g *autodiff.Graph, a *matrix.Mat) *matrix.Mat) func(*autodiff.Graph, []*matrix.Mat) (*matrix.Mat, error) {
	return func(g *autodiff.Graph, in []*matrix.Mat) (*matrix.Mat, error) {
		return fn(g, in[0]), nil
	}
}

func binary(fn func(g *autodiff.Graph, a, b *matrix.Mat) (*matrix.Mat, error)) func(*autodiff.Graph, []*matrix.Mat) (*matrix.Mat, error) {
	return func(g *autodiff.Graph, in []*matrix.Mat) (*matrix.Mat, error) {
		return fn(g, in[0], in[1])
	}
}

func catalog() []check {
	s := func(r, c int) matrix.Shape { return matrix.Shape{Rows: r, Cols: c} }
	return []check{
		{"add", []matrix.Shape{s(3, 4), s(3, 4)}, binary((*autodiff.Graph).Add)},
		{"add_broadcast", []matrix.Shape{s(3, 4), s(3, 1)}, binary((*autodiff.Graph).AddBroadcast)},
		{"sub", []matrix.Shape{s(3, 4), s(3, 4)}, binary((*autodiff.Graph).Sub)},
		{"sub_broadcast_reversed", []matrix.Shape{s(3, 4), s(3, 1)}, binary((*autodiff.Graph).SubBroadcastReversed)},
		{"eltmul", []matrix.Shape{s(3, 4), s(3, 4)}, binary((*autodiff.Graph).EltMul)},
		{"eltmul_rowwise", []matrix.Shape{s(3, 4), s(4, 3)}, binary((*autodiff.Graph).EltMulRowwise)},
		{"eltmul_broadcast_rowwise", []matrix.Shape{s(3, 4), s(1, 4)}, binary((*autodiff.Graph).EltMulBroadcastRowwise)},
		{"eltdivide", []matrix.Shape{s(3, 4), s(3, 4)}, binary((*autodiff.Graph).EltDivide)},
		{"square", []matrix.Shape{s(3, 4)}, unary((*autodiff.Graph).Square)},
		{"exp", []matrix.Shape{s(3, 4)}, unary((*autodiff.Graph).Exp)},
		{"log", []matrix.Shape{s(3, 4)}, unary((*autodiff.Graph).Log)},
		{"sqrt", []matrix.Shape{s(3, 4)}, unary((*autodiff.Graph).Sqrt)},
		{"eltinverse", []matrix.Shape{s(3, 4)}, unary((*autodiff.Graph).EltInverse)},
		{"sigmoid", []matrix.Shape{s(3, 4)}, unary((*autodiff.Graph).Sigmoid)},
		{"tanh", []matrix.Shape{s(3, 4)}, unary((*autodiff.Graph).Tanh)},
		{"transpose", []matrix.Shape{s(3, 4)}, unary((*autodiff.Graph).Transpose)},
		{"sum", []matrix.Shape{s(3, 4)}, unary((*autodiff.Graph).Sum)},
		{"mean", []matrix.Shape{s(3, 4)}, unary((*autodiff.Graph).Mean)},
		{"mul", []matrix.Shape{s(3, 4), s(4, 2)}, binary((*autodiff.Graph).Mul)},
		{"mul_with_bias", []matrix.Shape{s(3, 4), s(4, 2), s(3, 1)}, func(g *autodiff.Graph, in []*matrix.Mat) (*matrix.Mat, error) {
			return g.MulWithBias(in[0], in[1], in[2])
		}},
		{"mul_add_mul_with_bias", []matrix.Shape{s(3, 4), s(4, 2), s(3, 2), s(2, 2), s(3, 1)}, func(g *autodiff.Graph, in []*matrix.Mat) (*matrix.Mat, error) {
			return g.MulAddMulWithBias(in[0], in[1], in[2], in[3], in[4])
		}},
		{"softmax", []matrix.Shape{s(4, 3)}, func(g *autodiff.Graph, in []*matrix.Mat) (*matrix.Mat, error) {
			return g.Softmax(in[0], 1.5)
		}},
		{"softmax_cross_entropy", []matrix.Shape{s(4, 3)}, func(g *autodiff.Graph, in []*matrix.Mat) (*matrix.Mat, error) {
			return g.SoftmaxCrossEntropy(in[0], []int{0, 3, 1})
		}},
		{"hstack", []matrix.Shape{s(3, 2), s(3, 4)}, func(g *autodiff.Graph, in []*matrix.Mat) (*matrix.Mat, error) {
			return g.HStack(in...)
		}},
		{"vstack", []matrix.Shape{s(2, 3), s(4, 3)}, func(g *autodiff.Graph, in []*matrix.Mat) (*matrix.Mat, error) {
			return g.VStack(in...)
		}},
		{"rows_pluck", []matrix.Shape{s(4, 3)}, func(g *autodiff.Graph, in []*matrix.Mat) (*matrix.Mat, error) {
			return g.RowsPluck(in[0], []int{2, 0, 2})
		}},
		{"rows_cols_pluck", []matrix.Shape{s(4, 3)}, func(g *autodiff.Graph, in []*matrix.Mat) (*matrix.Mat, error) {
			return g.RowsColsPluck(in[0], []int{1, 3}, []int{0, 2})
		}},
	}
}

// runGradcheck compares the analytic gradient of every catalog entry against
// central differences of Σ out ⊙ R for a fixed projection R.
func runGradcheck(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("gradcheck", flag.ContinueOnError)
	eps := fs.Float64("eps", 1e-6, "Finite difference step")
	tol := fs.Float64("tol", 1e-4, "Relative tolerance")
	run := fs.String("run", "", "Only check operations whose name contains this substring")
	if err := fs.Parse(args); err != nil {
		return err
	}

	failed := 0
	for _, c := range catalog() {
		if *run != "" && !strings.Contains(c.name, *run) {
			continue
		}
		worst, err := gradcheck(c, *eps)
		if err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
		if worst > *tol {
			failed++
			logger.Error("gradient mismatch", "op", c.name, "max_rel_err", worst)
			continue
		}
		logger.Info("ok", "op", c.name, "max_rel_err", worst)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d operations", errGradcheckFailed, failed)
	}
	return nil
}

// gradcheck returns the largest relative error over every input element.
func gradcheck(c check, eps float64) (float64, error) {
	inputs := make([]*matrix.Mat, len(c.shapes))
	for i, s := range c.shapes {
		// Positive inputs keep log, sqrt and division in their domain.
		m, err := matrix.New(s.Rows, s.Cols, matrix.Uniform(0.5, 1.5))
		if err != nil {
			return 0, err
		}
		inputs[i] = m
	}

	g := autodiff.New()
	out, err := c.f(g, inputs)
	if err != nil {
		return 0, err
	}
	r, cols := out.Dims()
	proj, err := matrix.FromSlice(r, cols, projection(r, cols))
	if err != nil {
		return 0, err
	}
	proj.MarkConstant()
	weighted, err := g.EltMul(out, proj)
	if err != nil {
		return 0, err
	}
	if err := g.Grad(g.Sum(weighted)); err != nil {
		return 0, err
	}
	g.Backward()

	eval := func() (float64, error) {
		y, err := c.f(autodiff.New(autodiff.WithBackprop(false)), inputs)
		if err != nil {
			return 0, err
		}
		p := projection(r, cols)
		var total float64
		for i := range r {
			for j := range cols {
				total += y.At(i, j) * p[i*cols+j]
			}
		}
		return total, nil
	}

	var worst float64
	for _, in := range inputs {
		rows, cs := in.Dims()
		for i := range rows {
			for j := range cs {
				orig := in.At(i, j)
				in.Set(i, j, orig+eps)
				plus, err := eval()
				if err != nil {
					return 0, err
				}
				in.Set(i, j, orig-eps)
				minus, err := eval()
				if err != nil {
					return 0, err
				}
				in.Set(i, j, orig)

				numeric := (plus - minus) / (2 * eps)
				rel := math.Abs(numeric-in.GradAt(i, j)) / math.Max(1, math.Abs(numeric))
				worst = math.Max(worst, rel)
			}
		}
	}
	return worst, nil
}

// projection returns fixed row-major weights that differ per element.
func projection(r, c int) []float64 {
	p := make([]float64, r*c)
	for i := range r {
		for j := range c {
			p[i*c+j] = 0.5 + 0.25*float64((i*7+j*3)%5)
		}
	}
	return p
}
