// Command loadtest floods a running service with generated drawings.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/okian/vectordraw/internal/domain/exercise"
	"github.com/okian/vectordraw/internal/loadtest"
	"github.com/okian/vectordraw/pkg/logger"
)

// Default configuration constants.
const (
	defaultSubmissions  = 10000
	defaultStudents     = 500
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 30 * time.Second
	defaultPollInterval = 100 * time.Millisecond
	defaultWaitTimeout  = 2 * time.Minute
	defaultTestTimeout  = 10 * time.Minute
	logFilePermission   = 0o600
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:9080", "Base URL of the service")
		exerciseID   = flag.String("exercise", "inclined-plane", "Exercise to submit boards to")
		exerciseFile = flag.String("verify", "", "Local exercise YAML used to verify every result")
		submissions  = flag.Int("submissions", defaultSubmissions, "Number of boards to generate and submit")
		students     = flag.Int("students", defaultStudents, "Number of distinct students")
		workers      = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		poll         = flag.Duration("poll", defaultPollInterval, "Delay between result polls")
		wait         = flag.Duration("wait", defaultWaitTimeout, "How long to wait for grading to finish")
		outputFile   = flag.String("output", "", "Write the generated submissions to this JSON file")
		logFile      = flag.String("log", "", "Also write logs to this file")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := setupLogging(*logFile, *verbose); err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	cfg := &loadtest.Config{
		BaseURL:      *baseURL,
		ExerciseID:   *exerciseID,
		Submissions:  *submissions,
		Students:     *students,
		Workers:      *workers,
		Timeout:      *timeout,
		PollInterval: *poll,
		WaitTimeout:  *wait,
		OutputFile:   *outputFile,
		Verbose:      *verbose,
	}
	if *exerciseFile != "" {
		e, err := exercise.LoadFile(*exerciseFile)
		if err != nil {
			_, _ = os.Stderr.WriteString("failed to load exercise: " + err.Error() + "\n")
			os.Exit(1)
		}
		cfg.Exercise = &e
	}

	if _, err := loadtest.Run(ctx, cfg); err != nil {
		_, _ = os.Stderr.WriteString("load test failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func setupLogging(path string, verbose bool) error {
	var out io.Writer = os.Stdout
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return err
		}
		out = io.MultiWriter(os.Stdout, f)
	}
	if err := logger.Init(logger.WithOutput(out)); err != nil {
		return err
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}
