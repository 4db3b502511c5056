package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/basir/internal/registry"
)

// registryCmd represents the registry command
var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "List the specialist task for each travel topic",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TOPIC\tROLE\tKEY\tARTIFACT\tGOAL")
		for _, spec := range registry.New().Specs() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				spec.Label, spec.Role, spec.Schema.Key(), spec.ArtifactPath, spec.Goal)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(registryCmd)
}
