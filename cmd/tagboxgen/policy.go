package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chazu/tagbox/discriminant"
)

func init() {
	rootCmd.AddCommand(newPolicyCmd())
}

func newPolicyCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Show the pointer/discriminant split",
		Long: `The policy command prints the split this binary was built with: how many
low bits hold the address and how many high bits hold the discriminant.

The split is chosen at build time with one tagbox_reserveNN tag, where NN is
the pointer width from 48 to 63. Without a tag the split is 60/4:

  go build -tags tagbox_reserve56 ./...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPolicy(all)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "List every supported split")
	return cmd
}

func runPolicy(all bool) error {
	active := discriminant.Active()
	if !all {
		fmt.Println(active)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WIDTH\tBITS\tMAX\tMASK\t")
	for _, l := range discriminant.Layouts() {
		mark := ""
		if l == active {
			mark = "*"
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%#x\t%s\n", l.PointerWidth, l.Bits, l.Max, l.AddressMask, mark)
	}
	return w.Flush()
}
