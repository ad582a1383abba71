// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jcodagnone/regionfund/geocoding"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootCmd = &cobra.Command{
	Use:   "regionfund",
	Short: "Ontario funding regions and eligibility",
	Long: `
regionfund resolves a free-text location or a "latitude, longitude" pair to a
point, tells whether it falls in Northern or Southern Ontario, and computes the
funding percentage an applicant is eligible for there.

Every flag can also be set through the environment (e.g. --regions-file as
REGIONS_FILE), or a .env file in the working directory.
`,
	SilenceUsage: true,
}

var Version = "dev"

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// initConfig loads .env and exposes every flag as an environment variable.
func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Loading .env: %v", err)
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// bindFlags makes the named flags of cmd readable through viper.
func bindFlags(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		flag := cmd.PersistentFlags().Lookup(name)
		if flag == nil {
			flag = cmd.Flags().Lookup(name)
		}

		if err := viper.BindPFlag(name, flag); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("regions-file", "ontario_regions.geojson", "GeoJSON document with the funding regions")
	flags.String("geocoder", "nominatim", "Geocoding provider: nominatim or google")
	flags.String("nominatim-url", geocoding.DefaultNominatimURL, "Base URL of the Nominatim service")
	flags.String("user-agent", geocoding.DefaultUserAgent, "User-Agent sent to the geocoding provider")
	flags.Duration("geocode-timeout", geocoding.DefaultTimeout, "Timeout of every single geocoding request")
	flags.String("google-maps-api-key", "", "Google Maps API key; looked up through ADC when empty")
	flags.Bool("http-trace", false, "Display geocoding HTTP requests-responses")

	bindFlags(rootCmd,
		"regions-file",
		"geocoder",
		"nominatim-url",
		"user-agent",
		"geocode-timeout",
		"google-maps-api-key",
		"http-trace",
	)
}
