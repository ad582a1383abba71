// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/jcodagnone/regionfund/spatial"
	"github.com/jcodagnone/regionfund/utils/textutils"
	"github.com/spf13/cobra"
)

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Inspects the funding regions",
}

var regionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists the loaded regions",
	RunE: func(_ *cobra.Command, _ []string) error {
		idx, err := loadRegions()
		if err != nil {
			return err
		}

		a, b, c := strings.Repeat("─", 6), strings.Repeat("─", 24), strings.Repeat("─", 8)
		fmt.Println("Loaded regions:")
		fmt.Printf("╭─%-6s─┬─%-24s─┬─%8s─╮\n", a, b, c)
		fmt.Printf("│ %-6s │ %-24s │ %8s │\n", "Code", "Name", "Vertices")
		fmt.Printf("├─%-6s─┼─%-24s─┼─%8s─┤\n", a, b, c)

		for _, r := range idx.Regions() {
			fmt.Printf("│ %-6s │ %-24s │ %8s │\n", r.Code, r.Name, textutils.FormatInt(int64(r.Vertices())))
		}

		fmt.Printf("╰─%-6s─┴─%-24s─┴─%8s─╯\n", a, b, c)

		return nil
	},
}

var regionsClassifyCmd = &cobra.Command{
	Use:   "classify <latitude, longitude>",
	Short: "Tells which region contains a coordinate",
	Example: `  regionfund regions classify "46.4917, -80.9930"
  regionfund regions classify 43.6532,-79.3832`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		raw := strings.Join(args, " ")

		p, ok := spatial.ParseCoordinates(raw)
		if !ok {
			return fmt.Errorf("%q is not a \"latitude, longitude\" pair", raw)
		}

		idx, err := loadRegions()
		if err != nil {
			return err
		}

		cell, err := p.H3Cell(spatial.DefaultH3Resolution)
		if err != nil {
			return err
		}

		if r := idx.Classify(p); r != nil {
			fmt.Printf("%s\t%s\t%s\t%s\n", p, r.Code, r.Name, cell)
		} else {
			fmt.Printf("%s\t-\toutside every region\t%s\n", p, cell)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(regionsCmd)
	regionsCmd.AddCommand(regionsListCmd)
	regionsCmd.AddCommand(regionsClassifyCmd)
}
