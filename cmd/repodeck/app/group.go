package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmalmgren/repodeck/internal/store"
)

func newGroupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage repository groups",
	}
	cmd.AddCommand(newGroupAddCmd())
	cmd.AddCommand(newGroupListCmd())
	cmd.AddCommand(newGroupRemoveCmd())
	cmd.AddCommand(newGroupAssignCmd())
	cmd.AddCommand(newGroupUnassignCmd())
	return cmd
}

func newGroupAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Create a repository group",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withGroupStore(func(st *store.Store) error {
				group, err := st.AddGroup(strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Printf("created group %q (%s)\n", group.Name, group.ID)
				return nil
			})
		},
	}
}

func newGroupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List repository groups",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withGroupStore(func(st *store.Store) error {
				groups := st.Groups()
				if len(groups) == 0 {
					fmt.Println("no groups defined")
					return nil
				}
				for _, g := range groups {
					fmt.Printf("%s  %s (%d repositories)\n", g.ID, g.Name, len(g.RepoIDs))
				}
				return nil
			})
		},
	}
}

func newGroupRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a group, leaving its repositories ungrouped",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withGroupStore(func(st *store.Store) error {
				if err := st.DeleteGroup(args[0]); err != nil {
					return err
				}
				fmt.Printf("removed group %s\n", args[0])
				return nil
			})
		},
	}
}

func newGroupAssignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign <group-id> <repo-id>",
		Short: "Move a repository into a group",
		Long: `Move a repository into a group. A repository belongs to at most one group,
so assigning removes it from any other group first.`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return withGroupStore(func(st *store.Store) error {
				if err := st.AddRepoToGroup(args[0], args[1]); err != nil {
					return err
				}
				fmt.Printf("assigned repository %s to group %s\n", args[1], args[0])
				return nil
			})
		},
	}
}

func newGroupUnassignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unassign <group-id> <repo-id>",
		Short: "Remove a repository from a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return withGroupStore(func(st *store.Store) error {
				if err := st.RemoveRepoFromGroup(args[0], args[1]); err != nil {
					return err
				}
				fmt.Printf("removed repository %s from group %s\n", args[1], args[0])
				return nil
			})
		},
	}
}

// withGroupStore runs fn against a store with groups loaded.
func withGroupStore(fn func(*store.Store) error) error {
	st, err := newStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.LoadGroups(); err != nil {
		return fmt.Errorf("failed to load groups: %w", err)
	}
	return fn(st)
}
