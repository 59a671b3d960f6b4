// Package main provides the tapegrad CLI.
//
// Usage:
//
//	tapegrad gradcheck [-eps 1e-6] [-tol 1e-4] [-run pattern]
//	tapegrad train [-workers 4] [-steps 200] [-solver adam] [-out dir]
//	tapegrad version
package main

import (
	"fmt"
	"log/slog"
	"os"
)

const version = "v0.1.0-dev"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "version":
		fmt.Printf("tapegrad %s\n", version)
		return
	case "gradcheck":
		err = runGradcheck(os.Args[2:], logger)
	case "train":
		err = runTrain(os.Args[2:], logger)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error("command failed", "command", os.Args[1], "err", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("tapegrad - reverse-mode autodiff over dense matrices")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  gradcheck  Compare analytic gradients against finite differences")
	fmt.Println("  train      Train a softmax classifier with Hogwild workers")
	fmt.Println("  version    Show version")
}
