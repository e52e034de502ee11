// Command grade grades one board state offline and prints the result.
//
// Usage:
//
//	grade [-answer answer.json] [-exercise exercise.yaml] [-success "msg"]
//
// The answer is read from stdin when -answer is omitted. With -exercise the
// checks come from the exercise and any checks in the answer are ignored.
// The exit status is 0 for a correct answer, 1 for an incorrect one and 2
// when the answer could not be graded.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/okian/vectordraw/internal/domain/exercise"
	"github.com/okian/vectordraw/internal/domain/grader"
	"github.com/okian/vectordraw/internal/domain/model"
	"github.com/okian/vectordraw/pkg/logger"
)

const (
	exitCorrect   = 0
	exitIncorrect = 1
	exitError     = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("grade", flag.ContinueOnError)
	fs.SetOutput(stderr)
	answerPath := fs.String("answer", "", "answer JSON file (default stdin)")
	exercisePath := fs.String("exercise", "", "exercise YAML file providing the checks")
	success := fs.String("success", "", "message for correct answers")
	verbose := fs.Bool("verbose", false, "log every failing check")
	if err := fs.Parse(args); err != nil {
		return exitError
	}

	if err := logger.Init(logger.WithOutput(stderr)); err != nil {
		fmt.Fprintln(stderr, "grade:", err)
		return exitError
	}
	level := "warn"
	if *verbose {
		level = "debug"
	}
	_ = logger.SetLevelString(level)

	result, err := grade(context.Background(), stdin, *answerPath, *exercisePath, *success)
	if err != nil {
		fmt.Fprintln(stderr, "grade:", err)
		return exitError
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintln(stderr, "grade:", err)
		return exitError
	}
	if !result.Correct {
		return exitIncorrect
	}
	return exitCorrect
}

func grade(ctx context.Context, stdin io.Reader, answerPath, exercisePath, success string) (model.Result, error) {
	answer, err := readAnswer(stdin, answerPath)
	if err != nil {
		return model.Result{}, err
	}

	requireChecks := true
	if exercisePath != "" {
		e, err := exercise.LoadFile(exercisePath)
		if err != nil {
			return model.Result{}, err
		}
		if answer.Checks, err = e.BuildChecks(); err != nil {
			return model.Result{}, err
		}
		if success == "" {
			success = e.SuccessMessage
		}
		requireChecks = false
	}
	if err := exercise.ValidateAnswer(answer, requireChecks); err != nil {
		return model.Result{}, err
	}

	g := grader.New(
		grader.WithSuccessMessage(success),
		grader.WithLogger(logger.Named("grade")),
	)
	return g.Grade(ctx, answer)
}

func readAnswer(stdin io.Reader, path string) (model.Answer, error) {
	r := stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return model.Answer{}, fmt.Errorf("open answer: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	var answer model.Answer
	if err := json.NewDecoder(r).Decode(&answer); err != nil {
		return model.Answer{}, fmt.Errorf("decode answer: %w", err)
	}
	return answer, nil
}
