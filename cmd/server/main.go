package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/supersonicwisd1/result-processing-system/internal/app"
	"github.com/supersonicwisd1/result-processing-system/pkg/contracts"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetVersionString())
		return
	}

	application, err := app.New(*configPath)
	if err != nil {
		slog.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
