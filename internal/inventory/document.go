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

// Package inventory turns raw repository records into the technology
// inventory document. The Extractor maps one record to a normalized
// per-repository inventory; the Aggregator accumulates those across
// pages and finalizes the organization-wide document.
package inventory

import "time"

// Language is one detected programming language in a repository, with
// its byte count and share of the repository's total language bytes.
type Language struct {
	Name       string  `json:"name"`
	Size       int64   `json:"size"`
	Percentage float64 `json:"percentage"`
}

// Technologies groups the detected signals for one repository.
type Technologies struct {
	Languages  []Language `json:"languages"`
	IaC        []string   `json:"iac"`
	Docs       []string   `json:"docs"`
	Cloud      []string   `json:"cloud"`
	Frameworks []string   `json:"frameworks"`
	CICD       []string   `json:"ci_cd"`
}

// RepoInventory is the normalized inventory for one repository.
type RepoInventory struct {
	Name         string       `json:"name"`
	URL          string       `json:"url"`
	Visibility   string       `json:"visibility"`
	IsArchived   bool         `json:"is_archived"`
	LastCommit   *time.Time   `json:"last_commit"`
	Teams        []string     `json:"teams"`
	Technologies Technologies `json:"technologies"`
}

// LanguageStats summarizes one language across repositories.
// AveragePercentage is the mean share across the repositories using the
// language, rounded to three decimals.
type LanguageStats struct {
	RepoCount         int     `json:"repo_count"`
	AveragePercentage float64 `json:"average_percentage"`
	TotalSize         int64   `json:"total_size"`
}

// ActivityStats counts repositories by visibility and by recency of
// their last default-branch commit.
type ActivityStats struct {
	Total             int `json:"total"`
	Private           int `json:"private"`
	Public            int `json:"public"`
	Internal          int `json:"internal"`
	ActiveLastMonth   int `json:"active_last_month"`
	ActiveLast3Months int `json:"active_last_3months"`
	ActiveLast6Months int `json:"active_last_6months"`
}

// Document is the inventory artifact for one run. Repositories are
// sorted by name so reruns against identical upstream data produce
// identical output modulo GeneratedAt.
type Document struct {
	Organization            string                   `json:"organization"`
	GeneratedAt             time.Time                `json:"generated_at"`
	BatchSize               int                      `json:"batch_size"`
	Repositories            []RepoInventory          `json:"repositories"`
	StatsUnarchived         ActivityStats            `json:"stats_unarchived"`
	StatsArchived           ActivityStats            `json:"stats_archived"`
	LanguageStatsUnarchived map[string]LanguageStats `json:"language_statistics_unarchived"`
	LanguageStatsArchived   map[string]LanguageStats `json:"language_statistics_archived"`
}
