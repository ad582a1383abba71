// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/jcodagnone/regionfund/spatial"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var debugCoordinatesCmd = &cobra.Command{
	Use:   "coordinates",
	Short: "Checks how input lines are read as coordinates",
	Long: `Reads one location per line, and prints the line followed by the parsed
point, or by "not coordinates" when it would be sent to the geocoder.

$ echo "43.6532, -79.3832" | regionfund debug coordinates
43.6532, -79.3832		POINT(-79.383200 43.653200)
	`,
	RunE: func(_ *cobra.Command, _ []string) error {
		input := os.Stdin
		if isatty.IsTerminal(input.Fd()) {
			fmt.Fprintln(os.Stderr, "Enter locations to analyze, one per line…")
		}

		scanner := bufio.NewScanner(input)
		for scanner.Scan() {
			line := scanner.Text()
			if p, ok := spatial.ParseCoordinates(line); ok {
				fmt.Printf("%s\t\t%s\n", line, p)
			} else {
				fmt.Printf("%s\t\tnot coordinates\n", line)
			}
		}

		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugCoordinatesCmd)
}
