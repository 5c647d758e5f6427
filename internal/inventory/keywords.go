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

package inventory

import "strings"

// Catalog holds the keyword lists the Extractor scans manifests and
// READMEs for. The lists are matched case-insensitively; the catalog
// spelling is what appears in the output document.
type Catalog struct {
	// Frameworks are matched in pyproject.toml and package.json.
	Frameworks []string
	// Docs and Cloud are matched in README.md.
	Docs  []string
	Cloud []string
}

// DefaultCatalog returns the built-in keyword catalog.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Frameworks: []string{
			"React",
			"Angular",
			"Vue",
			"Django",
			"Streamlit",
			"Flask",
			"Spring",
			"Hibernate",
			"Express",
			"Next.js",
			"Play",
			"Akka",
			"Lagom",
		},
		Docs: []string{
			"Confluence",
			"MKDocs",
			"Sphinx",
			"ReadTheDocs",
		},
		Cloud: []string{
			"AWS",
			"Azure",
			"GCP",
		},
	}
}

// findKeywords returns the catalog keywords present in content, in
// catalog order, each at most once. Matching is case-insensitive.
func findKeywords(content string, keywords []string) []string {
	if content == "" {
		return nil
	}
	lower := strings.ToLower(content)

	var found []string
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			found = append(found, kw)
		}
	}
	return found
}
