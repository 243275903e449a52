package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/massalia/crawler/internal/config"
)

var listSourcesFile string

// sourcesCmd represents the sources command
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured sources",
	Long: `Sources prints every source in the configuration file with its
parser, rate limit and enabled state, after environment overrides.`,
	Args: cobra.NoArgs,
	RunE: runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
	sourcesCmd.Flags().StringVar(&listSourcesFile, "sources", "configs/sources.yaml", "sources configuration file")
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadSources(listSourcesFile)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPARSER\tENABLED\tDELAY\tURL")
	for _, src := range cfg.Sources {
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\t%s\n",
			src.ID, src.Name, src.Parser, src.Enabled, src.RateLimit.Delay(), src.URL)
	}
	return w.Flush()
}
