package report

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"gitwebsync/internal/differ"

	"gopkg.in/yaml.v3"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

type UnsyncedEntry struct {
	Repo        string  `json:"repo" yaml:"repo"`
	Skew        string  `json:"skew" yaml:"skew"`
	SkewSeconds float64 `json:"skew_seconds" yaml:"skew_seconds"`
}

type MissingEntry struct {
	Repo       string    `json:"repo" yaml:"repo"`
	LastChange time.Time `json:"last_change" yaml:"last_change"`
}

// Document is the serialised form of a check, used for the report
// subcommands and for the archived copy of each run.
type Document struct {
	CheckedAt time.Time       `json:"checked_at" yaml:"checked_at"`
	Master    string          `json:"master" yaml:"master"`
	Slave     string          `json:"slave" yaml:"slave"`
	State     string          `json:"state,omitempty" yaml:"state,omitempty"`
	Message   string          `json:"message,omitempty" yaml:"message,omitempty"`
	Unsynced  []UnsyncedEntry `json:"unsynced,omitempty" yaml:"unsynced,omitempty"`
	Missing   []MissingEntry  `json:"missing,omitempty" yaml:"missing,omitempty"`
	Added     []string        `json:"added,omitempty" yaml:"added,omitempty"`
	Removed   []string        `json:"removed,omitempty" yaml:"removed,omitempty"`
}

func UnsyncedEntries(report differ.UnsyncedReport) []UnsyncedEntry {
	entries := make([]UnsyncedEntry, 0, len(report))
	for _, repo := range sortedRepos(report) {
		entries = append(entries, UnsyncedEntry{
			Repo:        repo,
			Skew:        report[repo].String(),
			SkewSeconds: report[repo].Seconds(),
		})
	}
	return entries
}

func MissingEntries(report differ.MissingReport) []MissingEntry {
	entries := make([]MissingEntry, 0, len(report))
	for _, repo := range sortedRepos(report) {
		entries = append(entries, MissingEntry{
			Repo:       repo,
			LastChange: report[repo],
		})
	}
	return entries
}

func ValidFormat(format string) bool {
	switch format {
	case FormatTable, FormatJSON, FormatYAML:
		return true
	}
	return false
}

// Encode writes doc as JSON or YAML.
func Encode(w io.Writer, format string, doc Document) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer func() {
			_ = enc.Close()
		}()
		return enc.Encode(doc)
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}

func sortedRepos[M ~map[string]V, V any](m M) []string {
	return slices.Sorted(maps.Keys(m))
}
