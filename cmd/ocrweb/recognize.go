package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ocrweb/internal/view"
)

func newRecognizeCmd(env *appEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "recognize <file>",
		Short: "Run OCR on a local image and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recognizer, err := newRecognizer(env.cfg.Engine, nil, env.logger)
			if err != nil {
				return err
			}
			res, err := recognizer.Recognize(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			text, err := view.FormatResult(res)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
}
