package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/user00265/ctydatapi/internal/cty"
	"github.com/user00265/ctydatapi/internal/ctyfile"
)

func newCheckCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Parse the country file and report what it contains.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := v.GetString("file")
			text, err := ctyfile.ReadFile(path, v.GetString("charset"))
			if err != nil {
				return err
			}
			countries, err := cty.Parse(text)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			var prefixes, callsigns, overridden, wae int
			for _, c := range countries {
				if c.IsWAE() {
					wae++
				}
				for _, a := range c.Aliases {
					if a.Kind == cty.ExactCallsign {
						callsigns++
					} else {
						prefixes++
					}
					if len(a.Overrides) > 0 {
						overridden++
					}
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: OK\n", path)
			fmt.Fprintf(out, "  records:   %d (%d WAE only)\n", len(countries), wae)
			fmt.Fprintf(out, "  aliases:   %d (%d prefixes, %d callsigns)\n", prefixes+callsigns, prefixes, callsigns)
			fmt.Fprintf(out, "  overrides: %d aliases\n", overridden)
			return nil
		},
	}
}
