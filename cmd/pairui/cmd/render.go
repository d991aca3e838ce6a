package cmd

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matter2mqtt/pairui/cmd/pairui/internal/app"
	"github.com/matter2mqtt/pairui/pkg/api"
	"github.com/matter2mqtt/pairui/pkg/metrics"
)

func renderCmd(root *rootOptions) *cobra.Command {
	var page string
	var stats bool

	c := &cobra.Command{
		Use:   "render",
		Short: "Boot the UI headlessly, load devices and print the document",
		Long: `Boot the pairing UI against the configured service, wait for the
device list to load and print the rendered HTML document.

Notifications raised while loading (for example a failed device fetch) are
part of the printed document.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(root, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			client := api.NewClient(cfg.API.URL,
				api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
				api.WithLogger(logger))
			a, err := app.New(app.Options{
				API:           client,
				Logger:        logger,
				Metrics:       metrics.New(reg),
				NotifyDelay:   cfg.Notify.Delay,
				RedirectDelay: cfg.Pair.RedirectDelay,
				Page:          app.Page(page),
			})
			if err != nil {
				return err
			}
			defer a.Close()

			a.Start()
			a.Flush()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, a.Document().HTML())
			if stats {
				return printStats(cmd.ErrOrStderr(), reg)
			}
			return nil
		},
	}

	c.Flags().StringVarP(&page, "page", "p", string(app.PageHome), "page to render (home or pair)")
	c.Flags().BoolVar(&stats, "stats", false, "print runtime metrics to stderr")
	return c
}

func printStats(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var value float64
			if g := m.GetGauge(); g != nil {
				value = g.GetValue()
			} else if c := m.GetCounter(); c != nil {
				value = c.GetValue()
			}
			var labels []string
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			lines = append(lines, fmt.Sprintf("%s %s", styles.Label.Width(0).Render(name), styles.Counter.Render(fmt.Sprint(value))))
		}
	}
	sort.Strings(lines)
	fmt.Fprintln(w, styles.Title.Render("metrics"))
	for _, l := range lines {
		fmt.Fprintln(w, "  "+l)
	}
	return nil
}
