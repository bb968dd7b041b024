package cmd

import (
	"context"
	"os"
	"time"

	"github.com/Shac0x/WebPastMachine/internal/modules/cdx"
	"github.com/Shac0x/WebPastMachine/internal/modules/dedupe"
	"github.com/Shac0x/WebPastMachine/internal/modules/pipeline"
	"github.com/Shac0x/WebPastMachine/internal/modules/report"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	extension  string
	outputFile string
	timeout    time.Duration
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "webpastmachine <domain>",
	Short: "Find archived URLs for a domain in the Wayback Machine",
	Long: `A CLI tool that queries the Internet Archive CDX API for every URL
archived under a domain, deduplicates the results, summarizes them by file
extension, and renders them to the console or to a text file.

Examples:
  webpastmachine example.com
  webpastmachine example.com -e pdf
  webpastmachine example.com -o results.txt
  webpastmachine example.com -e pdf -o pdfs.txt`,
	Args:    cobra.ExactArgs(1),
	Version: Version,
}

// Execute runs the root command with the given context and logger.
func Execute(ctx context.Context, logger *zap.Logger) {
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return run(ctx, args[0], logger)
	}
	if err := rootCmd.Execute(); err != nil {
		logger.Error("execution failed", zap.Error(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&extension, "extension", "e", "", "Filter by file extension (example: pdf, jpg, html)")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file to save results (example: results.txt)")
	rootCmd.Flags().DurationVar(&timeout, "timeout", cdx.DefaultTimeout, "CDX API request timeout")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pflag.CommandLine.AddFlagSet(rootCmd.Flags())
}

func run(ctx context.Context, domain string, logger *zap.Logger) error {
	if !verbose {
		logger = logger.WithOptions(zap.IncreaseLevel(zap.InfoLevel))
	}

	logger.Info("starting archive lookup",
		zap.String("domain", domain),
		zap.String("extension", extension),
		zap.String("output", outputFile))

	p := pipeline.New(logger)
	p.AddStage(cdx.New(domain, timeout))
	p.AddStage(dedupe.New(extension))
	p.AddStage(report.New(outputFile))

	// The first stage is a source; it takes no input.
	inputChan := make(chan interface{})
	close(inputChan)

	return p.Run(ctx, inputChan)
}
