package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"navindex/internal/application"
	"navindex/internal/application/commands"
)

var (
	keyColor     = color.New(color.FgCyan).SprintFunc()
	rootColor    = color.New(color.FgCyan, color.Bold).SprintFunc()
	mutedColor   = color.New(color.FgHiBlack).SprintFunc()
	successColor = color.New(color.FgGreen).SprintFunc()
	warnColor    = color.New(color.FgYellow).SprintFunc()
	errorColor   = color.New(color.FgRed, color.Bold).SprintFunc()
)

func printKeys(w io.Writer, keys []uuid.UUID) {
	if len(keys) == 0 {
		fmt.Fprintln(w, mutedColor("(none)"))
		return
	}
	for _, k := range keys {
		fmt.Fprintln(w, keyColor(application.FormatKey(k)))
	}
}

func printMutation(w io.Writer, result *commands.MutationResult) {
	fmt.Fprintln(w, successColor(result.Message))
	if result.Reconciled {
		fmt.Fprintln(w, warnColor("index was reconciled with the store"))
	}
	printWarnings(w, result.NotifyErrors)
}

func printWarnings(w io.Writer, errs []error) {
	for _, err := range errs {
		fmt.Fprintln(w, warnColor("warning:"), err)
	}
}
