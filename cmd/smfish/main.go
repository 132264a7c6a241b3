package main

import (
	"context"
	"os"
	"strings"

	"github.com/flarebyte/smfish-pipeline/cmd/smfish/root"
)

type exitCoder interface {
	ExitCode() int
}

func main() {
	ctx, stop := notifyContext(context.Background())
	err := root.Execute(ctx, os.Args[1:])
	stop()
	if err != nil {
		// Print a short, single-line error to stderr on failures.
		msg := strings.Join(strings.Fields(err.Error()), " ")
		if msg == "" {
			msg = "error"
		}
		_, _ = os.Stderr.WriteString("smfish: " + msg + "\n")
		code := 1
		if ec, ok := err.(exitCoder); ok {
			if c := ec.ExitCode(); c != 0 {
				code = c
			}
		}
		os.Exit(code)
	}
}
