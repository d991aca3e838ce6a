package cmd

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matter2mqtt/pairui/pkg/api"
)

func devicesCmd(root *rootOptions) *cobra.Command {
	var asYAML bool

	c := &cobra.Command{
		Use:   "devices",
		Short: "List paired devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(root, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			client := api.NewClient(cfg.API.URL,
				api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
				api.WithLogger(logger))

			devices, err := client.Devices(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asYAML {
				data, err := registryOf(devices).Marshal()
				if err != nil {
					return fmt.Errorf("encode devices: %w", err)
				}
				_, err = out.Write(data)
				return err
			}
			fmt.Fprint(out, renderDevices(devices))
			return nil
		},
	}

	c.Flags().BoolVar(&asYAML, "yaml", false, "print the list in devices.yaml layout")
	return c
}

func registryOf(devices []api.Device) *api.Registry {
	reg := &api.Registry{Devices: make(map[uint64]api.DeviceConfig, len(devices))}
	for _, d := range devices {
		reg.Devices[d.NodeID] = api.DeviceConfig{Topic: d.Topic, Sensitivity: d.Sensitivity, DebounceMs: d.DebounceMs}
	}
	return reg
}

func renderDevices(devices []api.Device) string {
	if len(devices) == 0 {
		return styles.Faint.Render("No devices yet. Pair your first Matter device to get started.") + "\n"
	}
	var b strings.Builder
	b.WriteString(styles.Title.Render(fmt.Sprintf("%d device(s)", len(devices))) + "\n")
	for _, d := range devices {
		lines := []string{
			styles.Title.Render(d.Topic),
			styles.Label.Render("node") + fmt.Sprint(d.NodeID),
		}
		if d.Sensitivity != "" {
			lines = append(lines, styles.Label.Render("sensitivity")+d.Sensitivity)
		}
		if d.DebounceMs != 0 {
			lines = append(lines, styles.Label.Render("debounce")+fmt.Sprintf("%dms", d.DebounceMs))
		}
		b.WriteString(styles.Card.Render(strings.Join(lines, "\n")) + "\n")
	}
	b.WriteString(styles.Faint.Render(fmt.Sprintf("next node id: %d", api.NextNodeID(devices))) + "\n")
	return b.String()
}
