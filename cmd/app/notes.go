package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/starford/quill/internal"
	"github.com/starford/quill/internal/models"
	"github.com/starford/quill/internal/noteservice"
)

// noteFlags are shared by new and edit.
func noteFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Note title"},
		&cli.StringFlag{Name: "text", Usage: "Free text"},
		&cli.StringFlag{Name: "code", Usage: "Code snippet"},
		&cli.StringFlag{Name: "link", Usage: "Related link"},
		&cli.StringFlag{Name: "tags", Usage: "Free-form tags"},
	}
}

// fieldSetter reports whether a flag was given and its value.
type fieldSetter interface {
	IsSet(name string) bool
	String(name string) string
}

// applyFlags overlays the note flags that were given onto f.
func applyFlags(cmd fieldSetter, f models.Fields) models.Fields {
	set := func(dst *string, name string) {
		if cmd.IsSet(name) {
			*dst = cmd.String(name)
		}
	}
	set(&f.Title, "title")
	set(&f.Text, "text")
	set(&f.CodeSnippet, "code")
	set(&f.Link, "link")
	set(&f.Tags, "tags")
	return f
}

// parsePosition turns a 1-based note number into a zero-based position.
func parsePosition(arg string) (int, error) {
	if arg == "" {
		return 0, fmt.Errorf("note number is required")
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid note number %q", arg)
	}
	return n - 1, nil
}

func openService(ctx context.Context, cmd *cli.Command) (*noteservice.Service, error) {
	opts, err := options(cmd, true)
	if err != nil {
		return nil, err
	}
	return internal.OpenService(ctx, opts...)
}

// noteAt resolves the note number given as the first argument.
func noteAt(ctx context.Context, cmd *cli.Command, svc *noteservice.Service) (*noteservice.NoteDetail, error) {
	pos, err := parsePosition(cmd.Args().First())
	if err != nil {
		return nil, err
	}
	return svc.NoteAt(ctx, pos)
}

func printNote(w io.Writer, verb string, n *noteservice.NoteDetail) {
	fmt.Fprintf(w, "%s note %d: %s\n%s\n", verb, n.Position+1, n.Title, n.Meta)
}

func notebooksCommand() *cli.Command {
	return &cli.Command{
		Name:  "notebooks",
		Usage: "List notebook documents in the notebook directory",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := openService(ctx, cmd)
			if err != nil {
				return err
			}
			files, err := svc.Notebooks(ctx)
			if err != nil {
				return err
			}
			w := cmd.Root().Writer
			for _, f := range files {
				marker := " "
				if f.Path == svc.CurrentPath() {
					marker = "*"
				}
				fmt.Fprintf(w, "%s %s\t%s\n", marker, f.Path, f.UpdatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List note summaries",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := openService(ctx, cmd)
			if err != nil {
				return err
			}
			w := cmd.Root().Writer
			for _, item := range svc.ListNotes(ctx) {
				fmt.Fprintf(w, "%3d. %s\n     %s\n", item.Position+1, item.Title, item.Meta)
			}
			return nil
		},
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print a note as Markdown",
		ArgsUsage: "N",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := openService(ctx, cmd)
			if err != nil {
				return err
			}
			n, err := noteAt(ctx, cmd, svc)
			if err != nil {
				return err
			}
			md, err := svc.RenderNote(ctx, n.ID)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.Root().Writer, md)
			return err
		},
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "new",
		Usage: "Add a note and save the notebook",
		Flags: noteFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := openService(ctx, cmd)
			if err != nil {
				return err
			}
			n, err := svc.SubmitNote(ctx, "", applyFlags(cmd, models.Fields{}))
			if err != nil {
				return err
			}
			if err := svc.Save(ctx, "", ""); err != nil {
				return err
			}
			printNote(cmd.Root().Writer, "Added", n)
			return nil
		},
	}
}

func editCommand() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Change a note in place and save the notebook; omitted flags keep their values",
		ArgsUsage: "N",
		Flags:     noteFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := openService(ctx, cmd)
			if err != nil {
				return err
			}
			current, err := noteAt(ctx, cmd, svc)
			if err != nil {
				return err
			}
			n, err := svc.UpdateNote(ctx, current.ID, func(f models.Fields) models.Fields {
				return applyFlags(cmd, f)
			})
			if err != nil {
				return err
			}
			if err := svc.Save(ctx, "", ""); err != nil {
				return err
			}
			printNote(cmd.Root().Writer, "Updated", n)
			return nil
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Remove a note and save the notebook",
		ArgsUsage: "N",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := openService(ctx, cmd)
			if err != nil {
				return err
			}
			n, err := noteAt(ctx, cmd, svc)
			if err != nil {
				return err
			}
			if err := svc.DeleteNote(ctx, n.ID); err != nil {
				return err
			}
			if err := svc.Save(ctx, "", ""); err != nil {
				return err
			}
			printNote(cmd.Root().Writer, "Deleted", n)
			return nil
		},
	}
}
