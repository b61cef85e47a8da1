/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"planwrite/internal/config"
	"planwrite/internal/logger"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "planwrite",
		Short: "Planwrite plans and drafts compliant promo articles.",
		Long: `Planwrite turns a keyword and an operator offer into a publish-ready
promo article.

It plans a section outline, drafts each section with an AI provider,
injects internal and tracked offer links, and checks the result against
state gambling-advertising rules.

Examples:
  # Plan an outline
  planwrite plan --keyword "fanduel promo code" --offer offer.json

  # Draft an article from an edited outline
  planwrite draft --outline outline.txt --keyword "fanduel promo code" --offer offer.json --state NJ

  # Check an existing article
  planwrite validate article.html --state NY

  # Serve the HTTP API
  planwrite serve`,
		SilenceUsage: true,
	}

	// Initialize configuration
	cobra.OnInitialize(initConfig)

	// Add persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.planwrite.yaml)")

	// Add subcommands
	rootCmd.AddCommand(NewPlanCmd())
	rootCmd.AddCommand(NewOutlineFmtCmd())
	rootCmd.AddCommand(NewDraftCmd())
	rootCmd.AddCommand(NewValidateCmd())
	rootCmd.AddCommand(NewLinksCmd())
	rootCmd.AddCommand(NewServeCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.Logging.Level)

	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug("Using config file", "path", used)
	}
}
