package app

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jmalmgren/repodeck/internal/domain"
	"github.com/jmalmgren/repodeck/internal/store"
)

var (
	listSearch string
	listJSON   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached repositories by group",
	Long: `List the aggregated repositories, partitioned into groups plus the
ungrouped remainder. A fresh cache is served as-is; a stale or absent cache
triggers a fetch first.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Filter repositories and groups by substring")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Emit the grouped view as JSON")
}

func runList(cmd *cobra.Command, _ []string) error {
	st, err := newStore()
	if err != nil {
		return err
	}
	defer st.Close()

	st.Initialize(cmd.Context())
	if !st.IsAuthenticated() {
		fmt.Println("no platform tokens configured, add one with: repodeck token add")
		return nil
	}

	// A fresh snapshot makes this a no-op; otherwise it waits for the fetch.
	st.Refresh(cmd.Context(), store.RefreshOptions{})

	view := st.Project(listSearch)

	if listJSON {
		out, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode grouped view: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	printGroupedView(view)
	if msg := st.LastError(); msg != "" {
		fmt.Printf("\nlast refresh reported errors: %s\n", msg)
	}
	return nil
}

func printGroupedView(view domain.GroupedRepositories) {
	names := make([]string, 0, len(view.Grouped))
	for name := range view.Grouped {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("%s:\n", name)
		for _, r := range view.Grouped[name] {
			printRepository(r)
		}
	}

	if len(view.Ungrouped) > 0 {
		fmt.Println("ungrouped:")
		for _, r := range view.Ungrouped {
			printRepository(r)
		}
	}
}

func printRepository(r domain.Repository) {
	fmt.Printf("  %s/%s (%s) %s\n", r.Owner, r.Name, r.Source, r.URL)
}
