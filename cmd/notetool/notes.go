package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/xxxsen/notetool/internal/app"
	"github.com/xxxsen/notetool/internal/editor"
	"github.com/xxxsen/notetool/internal/model"
	"github.com/xxxsen/notetool/internal/notes"
	appErr "github.com/xxxsen/notetool/internal/pkg/errors"
	"github.com/xxxsen/notetool/internal/pkg/richtext"
	"github.com/xxxsen/notetool/internal/session"
)

func newNotesCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "list and edit notes",
	}
	cmd.AddCommand(
		newNotesListCmd(opts),
		newNotesAddCmd(opts),
		newNotesEditCmd(opts),
		newNotesRmCmd(opts),
		newNotesFavCmd(opts),
		newNotesShowCmd(opts),
		newNotesWatchCmd(opts),
	)
	return cmd
}

type listFlags struct {
	search string
	sort   string
}

func (f *listFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.search, "search", "", "case-insensitive filter on title, message and name")
	cmd.Flags().StringVar(&f.sort, "sort", "newest", "newest, oldest or az")
}

func (f *listFlags) apply(repo *notes.Repository) error {
	order, err := model.ParseSortOrder(f.sort)
	if err != nil {
		return err
	}
	repo.SetQuery(f.search)
	repo.SetSort(order)
	return nil
}

func newNotesListCmd(opts *clientOptions) *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "show notes, favorites first",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.start(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()
			if err := flags.apply(c.Notes()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), opts.renderer(c).View(c.Notes().View(), c.View().Mode()))
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

type draftFlags struct {
	name     string
	title    string
	message  string
	markdown string
}

func (f *draftFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "author name")
	cmd.Flags().StringVar(&f.title, "title", "", "note title")
	cmd.Flags().StringVar(&f.message, "message", "", "note body (html)")
	cmd.Flags().StringVar(&f.markdown, "markdown", "", "read the body from a markdown file")
}

// apply copies the flags the user actually passed into the open draft.
func (f *draftFlags) apply(cmd *cobra.Command, ed *editor.Machine) error {
	changed := cmd.Flags().Changed
	if changed("name") {
		if err := ed.SetName(f.name); err != nil {
			return err
		}
	}
	if changed("title") {
		if err := ed.SetTitle(f.title); err != nil {
			return err
		}
	}
	message, set := f.message, changed("message")
	if changed("markdown") {
		src, err := os.ReadFile(f.markdown)
		if err != nil {
			return fmt.Errorf("read markdown: %w", err)
		}
		if message, err = richtext.FromMarkdown(src); err != nil {
			return err
		}
		set = true
	}
	if set {
		return ed.SetMessage(message)
	}
	return nil
}

func newNotesAddCmd(opts *clientOptions) *cobra.Command {
	var flags draftFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "create a note",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.start(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()
			ed := c.Editor()
			if err := ed.NewNote(); err != nil {
				return err
			}
			if err := flags.apply(cmd, ed); err != nil {
				return err
			}
			return saveDraft(cmd, ed)
		},
	}
	flags.bind(cmd)
	return cmd
}

func newNotesEditCmd(opts *clientOptions) *cobra.Command {
	var flags draftFlags
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "change a note's name, title or message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.start(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()
			note, err := findNote(c, args[0])
			if err != nil {
				return err
			}
			ed := c.Editor()
			if err := ed.Open(note); err != nil {
				return err
			}
			if err := flags.apply(cmd, ed); err != nil {
				return err
			}
			return saveDraft(cmd, ed)
		},
	}
	flags.bind(cmd)
	return cmd
}

func saveDraft(cmd *cobra.Command, ed *editor.Machine) error {
	stats := ed.Stats()
	if err := ed.Save(cmd.Context()); err != nil {
		if appErr.IsWriteRejected(err) {
			return fmt.Errorf("the store refused the note, nothing was saved: %w", err)
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved (%d words, %d characters)\n", stats.Words, stats.Chars)
	return nil
}

func newNotesRmCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.start(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()
			if err := c.Notes().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted")
			return nil
		},
	}
}

func newNotesFavCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fav ID",
		Short: "toggle a note's favorite flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.start(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()
			note, err := findNote(c, args[0])
			if err != nil {
				return err
			}
			if err := c.Notes().ToggleFavorite(cmd.Context(), note.ID); err != nil {
				return err
			}
			if note.IsFavorite {
				fmt.Fprintln(cmd.OutOrStdout(), "removed from favorites")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "added to favorites")
			}
			return nil
		},
	}
}

func newNotesShowCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "print one note with word and character counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.start(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()
			note, err := findNote(c, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), opts.renderer(c).Note(note))
			return nil
		},
	}
}

func newNotesWatchCmd(opts *clientOptions) *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "re-render the list on every change until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd)
			defer cancel()
			c, state, err := opts.client()
			if err != nil {
				return err
			}
			defer c.Close()

			renderer := opts.renderer(c)
			redraw := make(chan struct{}, 1)
			poke := func() {
				select {
				case redraw <- struct{}{}:
				default:
				}
			}
			c.Notes().OnChange(func(notes.View) { poke() })
			c.View().OnChange(func(model.ViewMode) { poke() })
			loggedOut := make(chan struct{})
			var once sync.Once
			c.OnSessionChange(func(s session.State) {
				if s == session.Unauthenticated {
					once.Do(func() { close(loggedOut) })
				}
			})

			if err := flags.apply(c.Notes()); err != nil {
				return err
			}
			if _, err := c.Start(ctx, opts.query()); err != nil {
				return err
			}
			go func() { _ = c.WatchState(ctx, state) }()

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-loggedOut:
					cmd.PrintErrln(renderer.Denied())
					return nil
				case <-redraw:
					if !c.Notes().Loaded() {
						continue
					}
					fmt.Fprint(cmd.OutOrStdout(), "\033[H\033[2J")
					fmt.Fprintln(cmd.OutOrStdout(), renderer.View(c.Notes().View(), c.View().Mode()))
				}
			}
		},
	}
	flags.bind(cmd)
	return cmd
}

func findNote(c *app.Client, id string) (model.Note, error) {
	note, ok := c.Notes().Get(id)
	if !ok {
		return model.Note{}, fmt.Errorf("note %s: %w", id, appErr.ErrNotFound)
	}
	return note, nil
}

