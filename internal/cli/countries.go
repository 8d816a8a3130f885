package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/user00265/ctydatapi/internal/dxcc"
)

func newCountriesCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "countries",
		Short: "List all country records in file order.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := loadIndex(v)
			if err != nil {
				return err
			}
			countries := idx.Countries()

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(countries)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PREFIX\tNAME\tCONT\tCQ\tITU\t")
			for _, c := range countries {
				fmt.Fprintf(w, "%s %s\t%s\t%s\t%d\t%d\t\n", c.PrimaryPrefix, dxcc.Flag(c.PrimaryPrefix), c.Name, c.Continent, c.CQZone, c.ITUZone)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Bool("json", false, "Print records as JSON")
	return cmd
}
