package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hamed0406/renderwatch/internal/apiclient"
	"github.com/hamed0406/renderwatch/internal/domain"
)

var (
	startWebhook   string
	startThreshold float64
	startInterval  string
	historyLimit   int
)

var startCmd = &cobra.Command{
	Use:   "start URL [URL...]",
	Short: "Start monitoring one or more apps as a single job",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for i, raw := range args {
			if !strings.Contains(raw, "://") {
				args[i] = "https://" + raw
			}
		}
		out, err := client.Start(cmd.Context(), apiclient.StartRequest{
			AppURLs:             args,
			WebhookURL:          startWebhook,
			InactivityThreshold: startThreshold,
			Interval:            startInterval,
		})
		if err != nil {
			return err
		}
		fmt.Println(styleOK.Render("✔ started") + styleDim.Render("  job "+out.JobID))
		for _, a := range out.Apps {
			fmt.Println("  " + a)
		}
		fmt.Println(styleDim.Render(fmt.Sprintf("  alert after %.0f min of inactivity", out.InactivityThreshold)))
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop URL",
	Short: "Stop monitoring an app",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client.Stop(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println(styleOK.Render("✔ stopped") + "  " + args[0])
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show every monitored app",
	Aliases: []string{"s", "ls"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := client.Status(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to fetch status: %w", err)
		}
		if len(list) == 0 {
			fmt.Println(styleDim.Render("Nothing is being monitored."))
			return nil
		}
		fmt.Println(styleTitle.Render("renderwatch") + styleDim.Render(fmt.Sprintf("  %d app(s)", len(list))))
		fmt.Println(styleHeader.Render(fmt.Sprintf("%-40s %-10s %-20s %s", "APP", "STATUS", "LAST ACTIVE", "DOWN SINCE")))
		for _, st := range list {
			printTarget(st)
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history URL",
	Short: "Show recent checks of an app, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		checks, err := client.History(cmd.Context(), args[0], historyLimit)
		if err != nil {
			return err
		}
		fmt.Println(styleHeader.Render(fmt.Sprintf("%-20s %-4s %-6s %-10s %s", "CHECKED", "UP", "HTTP", "LATENCY", "REASON")))
		for _, c := range checks {
			up := styleErr.Render(padRight("no", 4))
			if c.Up {
				up = styleOK.Render(padRight("yes", 4))
			}
			fmt.Printf("%-20s %s %-6d %-10s %s\n",
				c.CheckedAt.Local().Format("2006-01-02 15:04:05"),
				up,
				c.HTTPStatus,
				fmt.Sprintf("%.0f ms", c.LatencyMS),
				styleDim.Render(c.Reason),
			)
		}
		return nil
	},
}

func init() {
	startCmd.Flags().StringVarP(&startWebhook, "webhook", "w", "", "destination webhook URL (required)")
	startCmd.Flags().Float64VarP(&startThreshold, "threshold", "t", 0, "minutes of inactivity before alerting (server default when 0)")
	startCmd.Flags().StringVarP(&startInterval, "interval", "i", "", `tick schedule as a cron expression, e.g. "*/5 * * * *"`)
	_ = startCmd.MarkFlagRequired("webhook")

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of checks to show")
}

func printTarget(st domain.TargetState) {
	down := styleDim.Render("-")
	if st.DownSince != nil {
		down = styleErr.Render(since(*st.DownSince))
	}
	fmt.Printf("%-40s %s %-20s %s\n",
		st.URL,
		statusStyle(string(st.CurrentStatus)).Render(padRight(string(st.CurrentStatus), 10)),
		st.LastActive.Local().Format("2006-01-02 15:04:05"),
		down,
	)
}

func since(t time.Time) string {
	d := time.Since(t).Round(time.Minute)
	return fmt.Sprintf("%s (%s ago)", t.Local().Format("15:04"), d)
}
