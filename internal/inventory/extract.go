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

import (
	"strings"

	"github.com/techatlashq/techatlas/internal/github"
)

// Extractor maps one raw repository record to its normalized
// inventory. It is a pure transformation: no I/O, no shared mutable
// state, deterministic for a given record. Missing fields in a record
// shrink the output; they never fail the run.
type Extractor struct {
	org     string
	teams   []github.Team
	catalog *Catalog
}

// NewExtractor creates an Extractor for the given organization. The
// team list drives CODEOWNERS matching; a nil catalog selects
// DefaultCatalog.
func NewExtractor(org string, teams []github.Team, catalog *Catalog) *Extractor {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Extractor{
		org:     org,
		teams:   teams,
		catalog: catalog,
	}
}

// Extract produces the per-repository inventory for one record.
func (e *Extractor) Extract(rec github.RepositoryRecord) RepoInventory {
	inv := RepoInventory{
		Name:       rec.Name,
		URL:        rec.URL,
		Visibility: rec.Visibility,
		IsArchived: rec.IsArchived,
		LastCommit: rec.LastCommit,
		Teams:      e.matchTeams(rec.CodeownersText),
	}

	inv.Technologies.Languages, inv.Technologies.IaC = extractLanguages(rec)

	var readme, pyproject, packageJSON string
	for _, entry := range rec.RootEntries {
		switch strings.ToLower(entry.Name) {
		case "readme.md":
			readme = entry.Text
		case "pyproject.toml":
			pyproject = entry.Text
		case "package.json":
			packageJSON = entry.Text
		}

		switch entry.Name {
		case ".github":
			for _, child := range entry.ChildNames {
				if child == "workflows" {
					inv.Technologies.CICD = append(inv.Technologies.CICD, "GitHub Actions")
					break
				}
			}
		case "ci":
			for _, child := range entry.ChildNames {
				if strings.Contains(child, "pipeline.yml") {
					inv.Technologies.CICD = append(inv.Technologies.CICD, "Concourse")
					break
				}
			}
		}
	}

	inv.Technologies.Frameworks = mergeUnique(
		findKeywords(pyproject, e.catalog.Frameworks),
		findKeywords(packageJSON, e.catalog.Frameworks),
	)
	inv.Technologies.Docs = findKeywords(readme, e.catalog.Docs)
	inv.Technologies.Cloud = findKeywords(readme, e.catalog.Cloud)

	return inv
}

// extractLanguages normalizes the language edges of a record. Within a
// repository language names are unique; when the upstream reports the
// same name twice the larger size wins, ties keeping the first-seen
// entry. HCL and Dockerfile additionally flag Terraform and Docker as
// infrastructure-as-code.
func extractLanguages(rec github.RepositoryRecord) ([]Language, []string) {
	if len(rec.Languages) == 0 || rec.TotalLanguageSize <= 0 {
		return nil, nil
	}

	var languages []Language
	var iac []string
	index := make(map[string]int)

	for _, edge := range rec.Languages {
		name := strings.TrimSpace(edge.Name)
		if name == "" {
			continue
		}

		switch name {
		case "HCL":
			iac = appendUnique(iac, "Terraform")
		case "Dockerfile":
			iac = appendUnique(iac, "Docker")
		}

		lang := Language{
			Name:       name,
			Size:       edge.Size,
			Percentage: float64(edge.Size) / float64(rec.TotalLanguageSize) * 100,
		}

		key := strings.ToLower(name)
		if i, ok := index[key]; ok {
			if lang.Size > languages[i].Size {
				languages[i] = lang
			}
			continue
		}
		index[key] = len(languages)
		languages = append(languages, lang)
	}

	return languages, iac
}

// matchTeams resolves CODEOWNERS content to organization team names by
// looking for @org/slug mentions. Unknown owners are ignored.
func (e *Extractor) matchTeams(codeowners string) []string {
	if codeowners == "" || len(e.teams) == 0 {
		return nil
	}

	content := strings.ToLower(strings.ReplaceAll(codeowners, "\n", " "))
	orgPrefix := "@" + strings.ToLower(e.org) + "/"

	var matched []string
	for _, team := range e.teams {
		if strings.Contains(content, orgPrefix+strings.ToLower(team.Slug)) {
			matched = appendUnique(matched, team.Name)
		}
	}
	return matched
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}

func mergeUnique(lists ...[]string) []string {
	var merged []string
	for _, list := range lists {
		for _, v := range list {
			merged = appendUnique(merged, v)
		}
	}
	return merged
}
