package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmalmgren/repodeck/internal/domain"
	"github.com/jmalmgren/repodeck/internal/store"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage platform tokens",
	}
	cmd.AddCommand(newTokenAddCmd())
	cmd.AddCommand(newTokenListCmd())
	cmd.AddCommand(newTokenRemoveCmd())
	return cmd
}

func newTokenAddCmd() *cobra.Command {
	var platform, name string

	cmd := &cobra.Command{
		Use:   "add <token>",
		Short: "Store a platform token",
		Long: `Store a platform credential. GitHub and GitLab take a personal access
token; Bitbucket takes "username:app_password".`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withTokenStore(func(st *store.Store) error {
				token := domain.PlatformToken{
					Platform: domain.Platform(platform),
					Token:    args[0],
					Name:     name,
				}
				if err := st.SaveToken(token); err != nil {
					return err
				}
				fmt.Printf("stored %s token\n", platform)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&platform, "platform", "p", "", "Hosting platform (GitHub, GitLab or Bitbucket)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name for the token")
	_ = cmd.MarkFlagRequired("platform")
	return cmd
}

func newTokenListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored tokens",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withTokenStore(func(st *store.Store) error {
				tokens := st.Tokens()
				if len(tokens) == 0 {
					fmt.Println("no tokens stored")
					return nil
				}
				for _, t := range tokens {
					fmt.Printf("%s  %-9s  %s\n", t.ID, t.Platform, t.Label())
				}
				return nil
			})
		},
	}
}

func newTokenRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a stored token",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withTokenStore(func(st *store.Store) error {
				if err := st.DeleteToken(args[0]); err != nil {
					return err
				}
				fmt.Printf("removed token %s\n", args[0])
				return nil
			})
		},
	}
}

// withTokenStore runs fn against a store with tokens loaded.
func withTokenStore(fn func(*store.Store) error) error {
	st, err := newStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.LoadTokens(); err != nil {
		return fmt.Errorf("failed to load tokens: %w", err)
	}
	return fn(st)
}
