package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/usdcheck/internal/app"
	"github.com/vk/usdcheck/internal/cli"
)

// main is the entrypoint for the usdcheck validator.
func main() {
	// Use a minimal logger until the configured one takes over.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	code, err := run(os.Stdout, os.Stderr, os.Args[1:])
	if err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(code)
}

// run encapsulates the application logic for easier testing. It returns the
// process exit code: 0 when every input passed validation.
func run(outW, diagW io.Writer, args []string) (code int, err error) {
	// Startup wiring panics on critical configuration errors; recover here
	// so main can turn it into a clean exit message.
	defer func() {
		if r := recover(); r != nil {
			code = 0
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return 0, err
	}
	if shouldExit {
		return 0, nil
	}

	usdcheckApp := app.NewApp(outW, diagW, appConfig)
	return usdcheckApp.Run(context.Background())
}
