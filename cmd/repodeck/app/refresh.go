package app

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmalmgren/repodeck/internal/store"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch repositories from all configured platforms",
	Long: `Fetch the repository list from every configured platform token and replace
the local cache, regardless of cache age.`,
	RunE: runRefresh,
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	st, err := newStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.LoadTokens(); err != nil {
		return fmt.Errorf("failed to load tokens: %w", err)
	}
	if !st.IsAuthenticated() {
		return errors.New("no platform tokens configured, add one with: repodeck token add")
	}

	st.Refresh(cmd.Context(), store.RefreshOptions{Force: true})

	repos := st.Repositories()
	if msg := st.LastError(); msg != "" {
		fmt.Printf("refreshed with errors: %s\n", msg)
	}
	fmt.Printf("cached %d repositories\n", len(repos))
	return nil
}
