package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"

	"github.com/born-ml/tapegrad/autodiff"
	"github.com/born-ml/tapegrad/internal/parallel"
	"github.com/born-ml/tapegrad/matrix"
	"github.com/born-ml/tapegrad/optim"
	"github.com/born-ml/tapegrad/serialization"
)

// trainConfig holds the flags of the train command.
type trainConfig struct {
	workers  int
	steps    int
	batch    int
	features int
	classes  int
	solver   string
	lr       float64
	clip     float64
	l2       float64
	in       string
	out      string
	logEvery int
}

// runTrain fits a linear softmax classifier to labels produced by a hidden
// random hidden matrix. Each worker owns a graph and gradient-private
// replicas of the shared parameters.
func runTrain(args []string, logger *slog.Logger) error {
	var cfg trainConfig
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	fs.IntVar(&cfg.workers, "workers", 4, "Number of Hogwild workers")
	fs.IntVar(&cfg.steps, "steps", 200, "Number of solver steps")
	fs.IntVar(&cfg.batch, "batch", 16, "Examples per worker per step")
	fs.IntVar(&cfg.features, "features", 8, "Input dimension")
	fs.IntVar(&cfg.classes, "classes", 3, "Number of classes")
	fs.StringVar(&cfg.solver, "solver", "adam", "Solver: sgd, adagrad or adam")
	fs.Float64Var(&cfg.lr, "lr", 0, "Learning rate (0 selects the solver default)")
	fs.Float64Var(&cfg.clip, "clip", 5, "Gradient clipping bound (0 disables)")
	fs.Float64Var(&cfg.l2, "l2", 0, "L2 regularization strength")
	fs.StringVar(&cfg.in, "in", "", "Directory to load parameters from")
	fs.StringVar(&cfg.out, "out", "", "Directory to save parameters to")
	fs.IntVar(&cfg.logEvery, "log-every", 20, "Log the loss every n steps")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.workers < 1 || cfg.steps < 1 || cfg.batch < 1 || cfg.logEvery < 1 {
		return errors.New("train: workers, steps, batch and log-every must be positive")
	}

	hidden, err := matrix.New(cfg.classes, cfg.features, matrix.Gaussian(0, 1))
	if err != nil {
		return err
	}
	w, err := matrix.New(cfg.classes, cfg.features, matrix.Gaussian(0, 0.01))
	if err != nil {
		return err
	}
	w.SetName("w")
	b, err := matrix.Zeros(cfg.classes, 1)
	if err != nil {
		return err
	}
	b.SetName("b")
	params := []*matrix.Mat{w, b}

	if cfg.in != "" {
		if err := serialization.LoadAll(cfg.in, params); err != nil {
			return err
		}
		logger.Info("loaded parameters", "dir", cfg.in)
	}

	opt, err := newSolver(cfg, params)
	if err != nil {
		return err
	}
	logger.Info("training", "solver", cfg.solver, "lr", opt.GetLR(), "workers", cfg.workers, "steps", cfg.steps)

	losses := make([]float64, cfg.workers)
	for step := 1; step <= cfg.steps; step++ {
		replicas := make([][]*matrix.Mat, cfg.workers)
		for i := range replicas {
			replicas[i] = optim.Replicate(params)
		}

		err := parallel.Workers(cfg.workers, func(worker int) error {
			g := autodiff.New()
			loss, err := batchLoss(g, hidden, replicas[worker], cfg)
			if err != nil {
				return err
			}
			if err := g.Grad(loss); err != nil {
				return err
			}
			g.Backward()
			losses[worker] = loss.At(0, 0) / float64(cfg.batch)
			return nil
		})
		if err != nil {
			return err
		}

		if err := optim.MergeGradients(params, replicas...); err != nil {
			return err
		}
		opt.Step()
		opt.ZeroGrad()

		if step%cfg.logEvery == 0 || step == cfg.steps {
			var mean float64
			for _, l := range losses {
				mean += l
			}
			logger.Info("step", "step", step, "loss", mean/float64(cfg.workers))
		}
	}

	if cfg.out != "" {
		if err := serialization.SaveAll(cfg.out, params); err != nil {
			return err
		}
		logger.Info("saved parameters", "dir", cfg.out)
	}
	return nil
}

func newSolver(cfg trainConfig, params []*matrix.Mat) (optim.Optimizer, error) {
	base := optim.Config{LR: cfg.lr, Clip: cfg.clip, L2: cfg.l2}
	switch cfg.solver {
	case "sgd":
		return optim.NewSGD(params, optim.SGDConfig{Config: base, Momentum: 0.9}), nil
	case "adagrad":
		return optim.NewAdaGrad(params, optim.AdaGradConfig{Config: base}), nil
	case "adam":
		return optim.NewAdam(params, optim.AdamConfig{Config: base}), nil
	default:
		return nil, fmt.Errorf("train: unknown solver %q", cfg.solver)
	}
}

// batchLoss samples a batch, labels it with the hidden matrix and returns
// the summed softmax cross entropy of the model on it.
func batchLoss(g *autodiff.Graph, hidden *matrix.Mat, params []*matrix.Mat, cfg trainConfig) (*matrix.Mat, error) {
	x, err := matrix.New(cfg.features, cfg.batch, matrix.Gaussian(0, 1))
	if err != nil {
		return nil, err
	}
	x.MarkConstant()

	var scores *matrix.Mat
	err = g.WithoutBackprop(func() error {
		var err error
		scores, err = g.Mul(hidden, x)
		return err
	})
	if err != nil {
		return nil, err
	}
	answers := make([]int, cfg.batch)
	for j := range answers {
		idx, err := scores.ArgmaxRange(j*cfg.classes, (j+1)*cfg.classes)
		if err != nil {
			return nil, err
		}
		answers[j] = idx - j*cfg.classes
	}

	logits, err := g.MulWithBias(params[0], x, params[1])
	if err != nil {
		return nil, err
	}
	return g.SoftmaxCrossEntropy(logits, answers)
}
