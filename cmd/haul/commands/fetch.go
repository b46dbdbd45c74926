package commands

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.trai.ch/haul/internal/app"
	"go.trai.ch/haul/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [urls...]",
		Short: "Fetch URLs and store them under their digest",
		Long: "Fetch every URL given on the command line plus the ones listed in the configuration.\n" +
			"Each result is printed as \"url -> label\", where the label is the stored digest,\n" +
			"\"failed\" or \"cancelled\". Interrupting the command cancels the job.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			progress, _ := cmd.Flags().GetBool("progress")
			verbose, _ := cmd.Flags().GetBool("verbose")

			report, err := c.app.Fetch(cmd.Context(), args, app.FetchOptions{
				ConfigPath: configPath,
				Overrides:  overridesFrom(cmd.Flags()),
				Progress:   progress,
				Verbose:    verbose,
			})
			if err != nil {
				return err
			}

			printReport(cmd, report)

			if report.Status == domain.JobStatusCancelled {
				return zerr.With(zerr.Wrap(domain.ErrCancelled, "fetch interrupted"), "job", report.JobID)
			}
			if failed := report.Failed(); failed > 0 {
				return zerr.With(zerr.Wrap(domain.ErrDownloadsFailed, "fetch finished with failures"), "failed", failed)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringP("output", "o", "", "Output directory or bucket URL (file://, mem://, s3://, gs://)")
	flags.IntP("workers", "w", 0, "Concurrent downloads")
	flags.Int("jobs", 0, "Concurrent jobs")
	flags.DurationP("timeout", "t", 0, "Per-attempt timeout, also the backoff unit")
	flags.IntP("retries", "r", 0, "Total attempts per URL")
	flags.String("digest", "", "Digest used for stored names: sha1 or xxhash")
	flags.Bool("strict-rename", false, "Label a URL failed when its rename fails")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.BoolP("progress", "p", false, "Print a line per finished download")
	flags.BoolP("verbose", "v", false, "Also print retry notices")
	return cmd
}

// overridesFrom collects the flags the user actually set.
func overridesFrom(flags *pflag.FlagSet) app.Overrides {
	var o app.Overrides
	if flags.Changed("output") {
		v, _ := flags.GetString("output")
		o.Output = &v
	}
	if flags.Changed("workers") {
		v, _ := flags.GetInt("workers")
		o.Workers = &v
	}
	if flags.Changed("jobs") {
		v, _ := flags.GetInt("jobs")
		o.Jobs = &v
	}
	if flags.Changed("timeout") {
		v, _ := flags.GetDuration("timeout")
		o.Timeout = &v
	}
	if flags.Changed("retries") {
		v, _ := flags.GetInt("retries")
		o.Retries = &v
	}
	if flags.Changed("digest") {
		v, _ := flags.GetString("digest")
		o.Digest = &v
	}
	if flags.Changed("strict-rename") {
		v, _ := flags.GetBool("strict-rename")
		o.StrictRename = &v
	}
	if flags.Changed("log-level") {
		v, _ := flags.GetString("log-level")
		o.LogLevel = &v
	}
	return o
}

func printReport(cmd *cobra.Command, report *app.Report) {
	urls := make([]string, 0, len(report.Results))
	for url := range report.Results {
		urls = append(urls, url)
	}
	slices.Sort(urls)

	out := cmd.OutOrStdout()
	for _, url := range urls {
		_, _ = fmt.Fprintf(out, "%s -> %s\n", url, report.Results[url])
	}
}
