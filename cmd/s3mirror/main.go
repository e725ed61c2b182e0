package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/forgekit/s3mirror"
	"github.com/forgekit/s3mirror/s3types"
)

var (
	red    = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green  = color.New(color.FgHiGreen).SprintFunc()
	cyan   = color.New(color.FgHiCyan).SprintFunc()
	yellow = color.New(color.FgHiYellow).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:   "s3mirror",
	Short: "Mirror the contents of one S3 bucket into another",
	Long: `s3mirror downloads every object missing from the destination bucket into a
local staging tree and uploads the staged files to the destination. Objects
are compared by key name only. Without --upload-bucket the run stops after
the download phase, leaving the staged files on disk.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		viper.SetEnvPrefix("S3MIRROR")
		viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		viper.AutomaticEnv()
		return viper.BindPFlags(cmd.Flags())
	},
	RunE: run,
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().StringP("bucket", "b", "", "Source bucket to mirror from (required)")
	rootCmd.Flags().String("upload-bucket", "", "Destination bucket; omit to only download")
	rootCmd.Flags().StringP("prefix", "p", "", "Only mirror objects under this key prefix")
	rootCmd.Flags().StringP("staging", "s", "./files", "Local staging directory")
	rootCmd.Flags().String("profile", "", "AWS profile for the source bucket")
	rootCmd.Flags().String("region", "", "AWS region for the source bucket")
	rootCmd.Flags().String("upload-profile", "", "AWS profile for the destination bucket (defaults to --profile)")
	rootCmd.Flags().String("upload-region", "", "AWS region for the destination bucket (defaults to --region)")
	rootCmd.Flags().String("endpoint", "", "Custom S3 endpoint, e.g. for LocalStack or MinIO")
	rootCmd.Flags().IntP("concurrency", "c", 30, "Maximum concurrent transfers per phase")
	rootCmd.Flags().Bool("dry-run", false, "List missing objects without transferring them")
	rootCmd.Flags().BoolP("verbose", "v", false, "Enable debug logging")
}

func run(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	logger := newLogger(viper.GetBool("verbose"))

	sourceBucket := viper.GetString("bucket")
	destBucket := viper.GetString("upload-bucket")
	if sourceBucket == "" {
		cmd.SilenceUsage = false
		return fmt.Errorf("a source bucket is required (--bucket or S3MIRROR_BUCKET)")
	}

	source, err := newClient(viper.GetString("profile"), viper.GetString("region"))
	if err != nil {
		return fmt.Errorf("source client: %w", err)
	}
	defer source.Close()

	stagingRoot, err := resolveStagingRoot(viper.GetString("staging"))
	if err != nil {
		return fmt.Errorf("resolve staging root: %w", err)
	}

	cfg := s3mirror.MirrorConfig{
		SourceBucket: sourceBucket,
		DestBucket:   destBucket,
		Prefix:       viper.GetString("prefix"),
		StagingRoot:  stagingRoot,
	}

	opts := []s3types.MirrorOption{
		s3mirror.WithConcurrency(viper.GetInt("concurrency")),
		s3mirror.WithLogger(logger),
		s3mirror.WithProgress(newBarTracker(os.Stderr)),
	}
	if viper.GetBool("dry-run") {
		opts = append(opts, s3mirror.WithDryRun(true))
	}

	var result *s3types.MirrorResult
	if destBucket == "" {
		result, err = s3mirror.DownloadAll(cmd.Context(), source, cfg, opts...)
	} else {
		dest, destErr := newClient(
			firstNonEmpty(viper.GetString("upload-profile"), viper.GetString("profile")),
			firstNonEmpty(viper.GetString("upload-region"), viper.GetString("region")),
		)
		if destErr != nil {
			return fmt.Errorf("destination client: %w", destErr)
		}
		defer dest.Close()
		result, err = s3mirror.Mirror(cmd.Context(), source, dest, cfg, opts...)
	}
	if err != nil {
		return err
	}

	printSummary(result, sourceBucket, destBucket)
	return nil
}

func newClient(profile, region string) (*s3mirror.Client, error) {
	var opts []s3types.Option
	if profile != "" {
		opts = append(opts, s3mirror.WithProfile(profile))
	}
	if region != "" {
		opts = append(opts, s3mirror.WithRegion(region))
	}
	if endpoint := viper.GetString("endpoint"); endpoint != "" {
		opts = append(opts,
			s3mirror.WithEndpoint(endpoint),
			s3mirror.WithForcePathStyle(true),
		)
	}
	return s3mirror.New(opts...)
}

// resolveStagingRoot anchors a relative staging directory at the process
// working directory. The client filesystem is rooted at /, so an unresolved
// relative root like "./files" would stage under the filesystem root instead
// of next to where the command was run.
func resolveStagingRoot(path string) (string, error) {
	return filepath.Abs(path)
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
}

func printSummary(result *s3types.MirrorResult, sourceBucket, destBucket string) {
	target := destBucket
	if target == "" {
		target = "local staging"
	}
	fmt.Printf("%s s3://%s -> %s\n", cyan("mirror"), sourceBucket, target)
	fmt.Printf("  source objects:  %s\n", humanize.Comma(int64(result.SourceObjects)))
	fmt.Printf("  missing objects: %s\n", humanize.Comma(int64(len(result.Missing))))

	if result.DryRun {
		for _, key := range result.Missing {
			fmt.Printf("  %s %s\n", yellow("would copy"), key)
		}
		return
	}

	fmt.Printf("  downloaded:      %s\n", humanize.Comma(int64(result.Downloaded)))
	if destBucket != "" {
		fmt.Printf("  uploaded:        %s\n", humanize.Comma(int64(result.Uploaded)))
	}
	fmt.Printf("  transferred:     %s in %s\n",
		humanize.Bytes(uint64(result.BytesTransferred)),
		result.Duration.Round(time.Millisecond))

	if len(result.Failures) == 0 {
		fmt.Printf("  %s\n", green("no failures"))
		return
	}

	fmt.Printf("  %s\n", red(fmt.Sprintf("%d failures", len(result.Failures))))
	for _, failure := range result.Failures {
		fmt.Printf("    %s %s: %v\n", red(string(failure.Phase)), failure.Key, failure.Err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("error:"), err)
		os.Exit(1)
	}
}
