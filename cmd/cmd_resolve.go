// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/jcodagnone/regionfund/funding"
	"github.com/jcodagnone/regionfund/resolution"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

type resolveOptions struct {
	ApplicantType          string
	MunicipalityPopulation string
}

var resolveOpts = &resolveOptions{}

// batchLine is one JSON line of the batch output.
type batchLine struct {
	Input  string             `json:"input"`
	Result *resolution.Result `json:"result,omitempty"`
	Error  string             `json:"error,omitempty"`
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [location]",
	Short: "Resolves a location and evaluates funding eligibility",
	Long: `Runs the same pipeline as POST /api/geocode and prints the result as JSON.

Without arguments, reads one location per line from stdin and prints one JSON
object per line.

$ regionfund resolve --applicant-type indigenous "Sudbury, Ontario"
$ printf '43.6532, -79.3832\nKenora\n' | regionfund resolve
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := newService(cmd.Context(), nil)
		if err != nil {
			return err
		}

		if len(args) > 0 {
			result, err := svc.Handle(cmd.Context(), resolveOpts.request(strings.Join(args, " ")))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")

			return enc.Encode(result)
		}

		return resolveBatch(cmd.Context(), svc, os.Stdin, os.Stdout)
	},
}

func (o *resolveOptions) request(location string) resolution.Request {
	return resolution.NewRequest(
		location,
		funding.Category(o.ApplicantType),
		funding.Bracket(o.MunicipalityPopulation),
	)
}

func resolveBatch(ctx context.Context, svc *resolution.Service, in *os.File, out io.Writer) error {
	if isatty.IsTerminal(in.Fd()) {
		fmt.Fprintln(os.Stderr, "Enter locations to resolve, one per line…")
	}

	var locations []string

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			locations = append(locations, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	var bar *progressbar.ProgressBar
	if isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(len(locations),
			progressbar.OptionSetDescription("Resolving"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	enc := json.NewEncoder(out)
	failed := 0

	for _, location := range locations {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := batchLine{Input: location}

		result, err := svc.Handle(ctx, resolveOpts.request(location))
		if err != nil {
			failed++
			line.Error = err.Error()
		} else {
			line.Result = result
		}

		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}

		if bar != nil {
			if err := bar.Add(1); err != nil {
				log.Printf("Error updating progress bar: %v", err)
			}
		}
	}

	log.Printf("Resolved %d locations, %d failed", len(locations)-failed, failed)

	return nil
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().StringVar(
		&resolveOpts.ApplicantType,
		"applicant-type",
		string(funding.CategoryBusiness),
		"Applicant category: indigenous, municipality or business",
	)
	resolveCmd.Flags().StringVar(
		&resolveOpts.MunicipalityPopulation,
		"municipality-population",
		"",
		"Population bracket for municipality applicants: below-170k or above-170k",
	)
}
