package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/tripcost/app/plugins"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List the available module types",
	RunE: func(cmd *cobra.Command, _ []string) error {
		avail := plugins.Available()
		kinds := make([]string, 0, len(avail))
		for k := range avail {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", k, strings.Join(avail[k], ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
}
