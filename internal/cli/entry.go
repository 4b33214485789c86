package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lineage/pkg/catalog"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

var errNothingToEdit = errors.New("nothing to edit: pass --id, --name, --primary or --secondary")

func newAddCmd(a *app) *cobra.Command {
	var primary, secondary string

	cmd := &cobra.Command{
		Use:   "add <id> <name>",
		Short: "Add an unlinked entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e := types.NewEntry(id, args[1])
			if e.Primary, err = types.ParseKind(primary); err != nil {
				return err
			}
			if e.Secondary, err = types.ParseKind(secondary); err != nil {
				return err
			}

			err = a.update(cmd.Context(), func(c *catalog.Catalog) error {
				return c.Add(e)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s/%s)\n", e, e.Primary, e.Secondary)
			return nil
		},
	}

	cmd.Flags().StringVar(&primary, "primary", types.KindUnknown.String(), "primary kind")
	cmd.Flags().StringVar(&secondary, "secondary", types.KindNone.String(), "secondary kind")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id|name>",
		Short: "Remove an entry; its successors become roots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var deleted types.Entry
			err := a.update(cmd.Context(), func(c *catalog.Catalog) error {
				e, err := c.Find(args[0])
				if err != nil {
					return err
				}
				deleted = e
				return c.Delete(e.ID)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", deleted)
			return nil
		},
	}
}

func newFindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "find <id|name>",
		Short: "Show one entry and its neighbours",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			e, err := c.Find(args[0])
			if err != nil {
				return err
			}
			describe(cmd.OutOrStdout(), c, e)
			return nil
		},
	}
}

func newEditCmd(a *app) *cobra.Command {
	var newID int
	var name, primary, secondary string

	cmd := &cobra.Command{
		Use:   "edit <id|name>",
		Short: "Change an entry's id, name or kinds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("id") && !flags.Changed("name") &&
				!flags.Changed("primary") && !flags.Changed("secondary") {
				return errNothingToEdit
			}

			var before, after types.Entry
			err := a.update(cmd.Context(), func(c *catalog.Catalog) error {
				e, err := c.Find(args[0])
				if err != nil {
					return err
				}
				before = e

				p, s := e.Primary, e.Secondary
				if flags.Changed("primary") {
					if p, err = types.ParseKind(primary); err != nil {
						return err
					}
				}
				if flags.Changed("secondary") {
					if s, err = types.ParseKind(secondary); err != nil {
						return err
					}
				}
				if err := c.SetKinds(e.ID, p, s); err != nil {
					return err
				}
				if flags.Changed("name") {
					if err := c.RenameName(e.ID, name); err != nil {
						return err
					}
				}
				id := e.ID
				if flags.Changed("id") {
					if err := c.RenameID(e.ID, newID); err != nil {
						return err
					}
					id = newID
				}
				after, err = c.Get(id)
				return err
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Updated %s\n", before)
			fmt.Fprintf(out, "%d -----> %d\n", before.ID, after.ID)
			fmt.Fprintf(out, "%s -----> %s\n", before.Name, after.Name)
			fmt.Fprintf(out, "%s -----> %s\n", before.Primary, after.Primary)
			fmt.Fprintf(out, "%s -----> %s\n", before.Secondary, after.Secondary)
			return nil
		},
	}

	cmd.Flags().IntVar(&newID, "id", 0, "new id")
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&primary, "primary", "", "new primary kind")
	cmd.Flags().StringVar(&secondary, "secondary", "", "new secondary kind")
	return cmd
}

// describe prints the full record of e with its neighbours resolved to
// "<id> <name>".
func describe(w io.Writer, c *catalog.Catalog, e types.Entry) {
	precursor := "none"
	if e.HasPrecursor() {
		precursor = label(c, e.Precursor)
	}
	successors := make([]string, 0, len(e.Successors))
	for _, id := range e.Successors {
		successors = append(successors, label(c, id))
	}

	fmt.Fprintf(w, "No: %d\n", e.ID)
	fmt.Fprintf(w, "Name: %s\n", e.Name)
	fmt.Fprintf(w, "Primary: %s\n", e.Primary)
	fmt.Fprintf(w, "Secondary: %s\n", e.Secondary)
	fmt.Fprintf(w, "Evolves From: %s\n", precursor)
	fmt.Fprintf(w, "Evolves To: [%s]\n", strings.Join(successors, ", "))
}

func label(c *catalog.Catalog, id int) string {
	e, err := c.Get(id)
	if err != nil {
		return fmt.Sprintf("%d ?", id)
	}
	return e.String()
}
