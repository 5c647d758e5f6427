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
	"math"
	"sort"
	"time"
)

// langAccum accumulates per-language figures before averaging.
type langAccum struct {
	repoCount  int
	percentSum float64
	totalSize  int64
}

// Aggregator accumulates extracted repository inventories one page at a
// time, so peak memory is one page plus the running totals. A repeated
// repository name keeps the first-seen inventory.
type Aggregator struct {
	repos []RepoInventory
	seen  map[string]bool

	langUnarchived map[string]*langAccum
	langArchived   map[string]*langAccum
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		seen:           make(map[string]bool),
		langUnarchived: make(map[string]*langAccum),
		langArchived:   make(map[string]*langAccum),
	}
}

// Add merges one repository inventory into the running totals.
func (a *Aggregator) Add(inv RepoInventory) {
	if a.seen[inv.Name] {
		return
	}
	a.seen[inv.Name] = true
	a.repos = append(a.repos, inv)

	stats := a.langUnarchived
	if inv.IsArchived {
		stats = a.langArchived
	}
	for _, lang := range inv.Technologies.Languages {
		acc := stats[lang.Name]
		if acc == nil {
			acc = &langAccum{}
			stats[lang.Name] = acc
		}
		acc.repoCount++
		acc.percentSum += lang.Percentage
		acc.totalSize += lang.Size
	}
}

// Count returns the number of repositories added so far.
func (a *Aggregator) Count() int {
	return len(a.repos)
}

// Finalize builds the inventory document. Repositories are sorted by
// name so output is reproducible regardless of upstream page ordering;
// activity windows are measured against now.
func (a *Aggregator) Finalize(org string, batchSize int, now time.Time) *Document {
	repos := make([]RepoInventory, len(a.repos))
	copy(repos, a.repos)
	sort.Slice(repos, func(i, j int) bool { return repos[i].Name < repos[j].Name })

	doc := &Document{
		Organization:            org,
		GeneratedAt:             now.UTC(),
		BatchSize:               batchSize,
		Repositories:            repos,
		LanguageStatsUnarchived: averages(a.langUnarchived),
		LanguageStatsArchived:   averages(a.langArchived),
	}

	for _, repo := range repos {
		stats := &doc.StatsUnarchived
		if repo.IsArchived {
			stats = &doc.StatsArchived
		}

		stats.Total++
		switch repo.Visibility {
		case "PRIVATE":
			stats.Private++
		case "PUBLIC":
			stats.Public++
		case "INTERNAL":
			stats.Internal++
		}

		if repo.LastCommit == nil {
			continue
		}
		age := now.Sub(*repo.LastCommit)
		if age <= 30*24*time.Hour {
			stats.ActiveLastMonth++
		}
		if age <= 90*24*time.Hour {
			stats.ActiveLast3Months++
		}
		if age <= 180*24*time.Hour {
			stats.ActiveLast6Months++
		}
	}

	return doc
}

func averages(accums map[string]*langAccum) map[string]LanguageStats {
	out := make(map[string]LanguageStats, len(accums))
	for name, acc := range accums {
		out[name] = LanguageStats{
			RepoCount:         acc.repoCount,
			AveragePercentage: round3(acc.percentSum / float64(acc.repoCount)),
			TotalSize:         acc.totalSize,
		}
	}
	return out
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
