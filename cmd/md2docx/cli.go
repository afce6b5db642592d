package main

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for command dispatch.
var (
	ErrNoCommand      = errors.New("no command specified")
	ErrUnknownCommand = errors.New("unknown command")
)

// run dispatches to the requested command.
func run(args []string, env *Environment) error {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ErrNoCommand
	}

	switch args[1] {
	case "convert":
		return runConvert(context.Background(), args[2:], env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "md2docx %s\n", Version)
		return nil
	case "help", "--help", "-h":
		runHelp(args[2:], env)
		return nil
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[1])
	}
}
