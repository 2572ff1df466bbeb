package main

import (
	"os"
	"strings"

	"github.com/evanw/esminify/internal/logger"
	"github.com/spf13/cobra"
)

const esminifyVersion = "0.1.0"

var serviceMode bool

var rootCmd = &cobra.Command{
	Use:   "esminify",
	Short: "Minify JavaScript files",
	Long: `esminify parses a JavaScript file, minifies it with top-level names
preserved, and prints the result with an optional source map. Syntax errors
are reported with 1-based line and column numbers.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serviceMode {
			return runService(os.Stdin, os.Stdout)
		}
		return cmd.Help()
	},
}

func init() {
	rootCmd.Flags().BoolVar(&serviceMode, "service", false, "Serve transform requests over stdin/stdout")

	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(versionCmd)
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		logger.PrintErrorToStderr(os.Args, strings.TrimSpace(err.Error()))
	}
	return err
}
