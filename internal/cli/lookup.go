package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/user00265/ctydatapi/internal/cty"
	"github.com/user00265/ctydatapi/internal/dxcc"
	"github.com/user00265/ctydatapi/internal/utils"
)

type lookupOutput struct {
	Callsign string `json:"callsign"`
	Found    bool   `json:"found"`
	Match    string `json:"match,omitempty"`
	Exact    bool   `json:"exact,omitempty"`
	*cty.Country
}

func newLookupCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup CALLSIGN...",
		Short: "Resolve one or more callsigns.",
		Example: `  ctydat lookup OH2BH
  ctydat lookup --file /data/cty.dat --json K1ABC KH6XYZ`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := loadIndex(v)
			if err != nil {
				return err
			}

			results := make([]lookupOutput, 0, len(args))
			for _, arg := range args {
				results = append(results, lookupOne(idx, arg))
			}

			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			for _, r := range results {
				printLookup(cmd.OutOrStdout(), r)
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print results as JSON")
	return cmd
}

func lookupOne(idx *dxcc.Index, raw string) lookupOutput {
	call := utils.NormalizeCallsign(raw)
	out := lookupOutput{Callsign: call}
	m, ok := idx.Lookup(call)
	if !ok {
		return out
	}
	out.Found = true
	out.Match = strings.ToUpper(m.Key)
	out.Exact = m.Exact
	out.Country = &m.Country
	return out
}

func printLookup(w io.Writer, r lookupOutput) {
	if !r.Found {
		fmt.Fprintf(w, "%s: no match\n", r.Callsign)
		return
	}
	how := "prefix"
	if r.Exact {
		how = "callsign"
	}
	fmt.Fprintf(w, "%s: %s (%s) CQ %d, ITU %d, %s, %.2f/%.2f, UTC%+.1f [%s %s]\n",
		r.Callsign, r.Name, r.PrimaryPrefix, r.CQZone, r.ITUZone, r.Continent,
		r.Latitude, r.Longitude, utcOffset(r.TimeOffset), how, r.Match)
}

// utcOffset converts the file's offset, which is positive west of Greenwich,
// to the usual UTC+h form.
func utcOffset(fileOffset float32) float32 {
	if fileOffset == 0 {
		return 0
	}
	return -fileOffset
}
