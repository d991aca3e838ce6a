package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matter2mqtt/pairui/cmd/pairui/internal/app"
	"github.com/matter2mqtt/pairui/pkg/validation"
)

func validateCmd() *cobra.Command {
	var code, name, nodeID string

	c := &cobra.Command{
		Use:   "validate",
		Short: "Check pairing details against the pair form rules (no HTTP)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report := app.PairSchema().Validate(map[string]string{
				"code":    code,
				"name":    name,
				"node_id": nodeID,
			})
			fmt.Fprint(cmd.OutOrStdout(), renderReport(report))
			if !report.Valid {
				return fmt.Errorf("%d validation error(s)", len(report.Errors()))
			}
			return nil
		},
	}

	c.Flags().StringVar(&code, "code", "", "pairing code, e.g. MT:Y.K9042C00KA0648G00")
	c.Flags().StringVar(&name, "name", "", "device name/topic, e.g. motion/living-room")
	c.Flags().StringVar(&nodeID, "node-id", "", "node id (1, 2, 3, ...)")
	return c
}

func renderReport(report validation.Report) string {
	var b strings.Builder
	for _, r := range report.Fields {
		mark := styles.OK.Render("ok")
		if !r.Valid {
			mark = styles.Failed.Render("failed")
		}
		fmt.Fprintf(&b, "%s %s %s\n", styles.Label.Render(r.Field), mark, styles.Faint.Render(fmt.Sprintf("%q", r.Value)))
		for _, msg := range r.Messages {
			fmt.Fprintf(&b, "  %s\n", styles.Failed.Render(msg))
		}
	}
	return b.String()
}
