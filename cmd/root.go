package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:   "staff-clock",
	Short: "Face and PIN attendance clock for school staff",
	Long: `Staff Clock records staff arrival and departure. Clock terminals send a
face embedding (or a camera frame) and the server matches it against the
enrolled staff; a staff number and PIN is the fallback. Offline fingerprint
terminals upload their logs in batches.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
