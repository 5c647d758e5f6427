// Copyright 2025 TechAtlas, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/techatlashq/techatlas/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "techatlas",
		Short: "Inventory the technologies used across an organization's repositories",
		Long: `TechAtlas walks a GitHub organization's repositories page by page,
extracts technology signals (languages, frameworks, IaC, CI/CD, owning
teams), and writes one aggregated inventory document to S3 or local disk.`,
		Version:       version.Version,
		SilenceUsage:  true, // Don't show usage on error
		SilenceErrors: true, // We'll handle error printing ourselves
	}

	rootCmd.AddCommand(newScanCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(mapErrorToExitCode(err))
	}
}
