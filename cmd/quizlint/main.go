// Command quizlint validates quiz definition files (.yaml, .yml or .json)
// and prints every error and warning. It exits 1 when any file is invalid.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/validation"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("quizlint", flag.ContinueOnError)
	fs.SetOutput(stderr)
	asJSON := fs.Bool("json", false, "print results as JSON")
	strict := fs.Bool("strict", false, "treat warnings as failures")
	parallel := fs.Int("parallel", 4, "questions validated concurrently per quiz")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: quizlint [-json] [-strict] [-parallel n] FILE...")
		return 2
	}

	v := validation.New(validation.WithParallelism(*parallel))
	failed := false
	for _, path := range fs.Args() {
		q, err := quiz.LoadFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", path, err)
			failed = true
			continue
		}
		res := v.ValidateQuizForm(q.Questions)
		if !res.IsValid || (*strict && len(res.Warnings) > 0) {
			failed = true
		}
		if *asJSON {
			_ = json.NewEncoder(stdout).Encode(struct {
				File string `json:"file"`
				validation.Result
			}{path, res})
			continue
		}
		report(stdout, path, res)
	}
	if failed {
		return 1
	}
	return 0
}

func report(w io.Writer, path string, res validation.Result) {
	status := "ok"
	if !res.IsValid {
		status = "invalid"
	}
	fmt.Fprintf(w, "%s: %s (%d errors, %d warnings)\n", path, status, len(res.Errors), len(res.Warnings))
	for _, e := range res.Errors {
		fmt.Fprintf(w, "  error   %s [%s] %s\n", e.Field, e.Code, e.Message)
	}
	for _, wn := range res.Warnings {
		fmt.Fprintf(w, "  warning %s %s", wn.Field, wn.Message)
		if wn.Suggestion != "" {
			fmt.Fprintf(w, " (%s)", wn.Suggestion)
		}
		fmt.Fprintln(w)
	}
}
