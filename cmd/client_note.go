package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/haierkeys/jot-sync-service/internal/client"
	"github.com/haierkeys/jot-sync-service/internal/domain"
	"github.com/haierkeys/jot-sync-service/pkg/timex"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage notes in the local store",
}

type noteAddFlags struct {
	date        string
	tags        []string
	interactive bool
}

// composeInEditor opens $VISUAL/$EDITOR on tpl and returns the parsed result
// composeInEditor 在 $VISUAL/$EDITOR 中编辑 tpl 并返回解析结果
func composeInEditor(cmd *cobra.Command, tpl *client.NoteTemplate) (*client.NoteTemplate, error) {
	text, err := client.RenderTemplate(tpl)
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out, err := client.NewEditor(cmd.InOrStdin(), cmd.OutOrStdout()).Compose(ctx, text)
	if errors.Is(err, client.ErrEditorAborted) {
		return nil, errors.New("note not saved: edit aborted")
	}
	return out, err
}

// newNoteAddCmd builds `add`, also mounted at the root as `down`
// newNoteAddCmd 创建 add 命令，同时以 down 挂载在根命令下
func newNoteAddCmd(use string) *cobra.Command {
	f := new(noteAddFlags)
	c := &cobra.Command{
		Use:   use + " [-i] [--date DATE] [--tag TAG] content...",
		Short: "Create a new note",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, tags, dateExpr := strings.Join(args, " "), f.tags, f.date
			if f.interactive {
				tpl, err := composeInEditor(cmd, &client.NoteTemplate{Tags: tags, Date: dateExpr, Content: content})
				if err != nil {
					return err
				}
				content, tags, dateExpr = tpl.Content, tpl.Tags, tpl.Date
			} else if content == "" {
				piped, err := readStdin()
				if err != nil {
					return err
				}
				content = piped
			}
			date, err := timex.ParseDateSource(dateExpr, time.Now())
			if err != nil {
				return userError(err)
			}
			return withLocal(cmd, func(ctx context.Context, _ *client.Profile, local *client.Local) error {
				n, err := local.Notes.Create(ctx, content, tags, date)
				if err != nil {
					return userError(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Note added successfully (%s)\n", n.ID)
				return nil
			})
		},
	}
	c.Flags().StringVarP(&f.date, "date", "d", "today", "subject date: today, yesterday, tomorrow, none or YYYY-MM-DD")
	c.Flags().StringSliceVar(&f.tags, "tag", nil, "tags, repeatable or comma separated")
	c.Flags().BoolVarP(&f.interactive, "interactive", "i", false, "compose the note in $VISUAL or $EDITOR")
	return c
}

type noteSearchFlags struct {
	tags    []string
	date    string
	limit   int
	lines   int
	output  string
	deleted bool
}

func (f *noteSearchFlags) query(term string, now time.Time) (*domain.SearchQuery, error) {
	r, err := timex.ParseDateTarget(f.date, now)
	if err != nil {
		return nil, err
	}
	return &domain.SearchQuery{
		Text:           term,
		Tags:           f.tags,
		DateFrom:       r.From,
		DateTo:         r.To,
		IncludeDeleted: f.deleted,
		Limit:          f.limit,
	}, nil
}

var noteSearchFlag = new(noteSearchFlags)

var noteSearchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Search and list notes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := client.ParseOutputFormat(noteSearchFlag.output)
		if err != nil {
			return err
		}
		term := ""
		if len(args) > 0 {
			term = args[0]
		}
		q, err := noteSearchFlag.query(term, time.Now())
		if err != nil {
			return userError(err)
		}
		return withLocal(cmd, func(ctx context.Context, _ *client.Profile, local *client.Local) error {
			notes, err := local.Notes.Search(ctx, q)
			if err != nil {
				return userError(err)
			}
			return client.Render(cmd.OutOrStdout(), notes, client.RenderOptions{Format: format, Lines: noteSearchFlag.lines})
		})
	},
}

type noteLastFlags struct {
	tags   []string
	output string
}

var noteLastFlag = new(noteLastFlags)

var noteLastCmd = &cobra.Command{
	Use:   "last [term]",
	Short: "Show the most recently touched note",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := client.ParseOutputFormat(noteLastFlag.output)
		if err != nil {
			return err
		}
		q := &domain.SearchQuery{Tags: noteLastFlag.tags}
		if len(args) > 0 {
			q.Text = args[0]
		}
		return withLocal(cmd, func(ctx context.Context, _ *client.Profile, local *client.Local) error {
			n, err := local.Notes.Last(ctx, q)
			if err != nil {
				return userError(err)
			}
			return client.Render(cmd.OutOrStdout(), []*domain.Note{n}, client.RenderOptions{Format: format})
		})
	},
}

var noteShowOutput string

var noteShowCmd = &cobra.Command{
	Use:   "show <id|prefix>",
	Short: "Show one note by id or unique id prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := client.ParseOutputFormat(noteShowOutput)
		if err != nil {
			return err
		}
		return withLocal(cmd, func(ctx context.Context, _ *client.Profile, local *client.Local) error {
			n, err := local.Notes.Resolve(ctx, args[0])
			if err != nil {
				return userError(err)
			}
			return client.Render(cmd.OutOrStdout(), []*domain.Note{n}, client.RenderOptions{Format: format})
		})
	},
}

type noteEditFlags struct {
	content     string
	tags        []string
	date        string
	interactive bool
}

var noteEditFlag = new(noteEditFlags)

var noteEditCmd = &cobra.Command{
	Use:   "edit <id|prefix> [-i] [--content TEXT] [--tag TAG] [--date DATE]",
	Short: "Edit a note, flags that are not given keep their current value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		return withLocal(cmd, func(ctx context.Context, _ *client.Profile, local *client.Local) error {
			cur, err := local.Notes.Resolve(ctx, args[0])
			if err != nil {
				return userError(err)
			}

			content, tags, date := cur.Content, cur.Tags, cur.SubjectDate
			if noteEditFlag.interactive {
				current := "none"
				if date != nil {
					current = *date
				}
				tpl, err := composeInEditor(cmd, &client.NoteTemplate{Tags: tags, Date: current, Content: content})
				if err != nil {
					return err
				}
				if date, err = timex.ParseDateSource(tpl.Date, time.Now()); err != nil {
					return userError(err)
				}
				content, tags = tpl.Content, tpl.Tags
			}
			if flags.Changed("content") {
				content = noteEditFlag.content
			}
			if flags.Changed("tag") {
				tags = noteEditFlag.tags
			}
			if flags.Changed("date") {
				if date, err = timex.ParseDateSource(noteEditFlag.date, time.Now()); err != nil {
					return userError(err)
				}
			}

			n, err := local.Notes.Update(ctx, cur.ID, content, tags, date)
			if err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Note updated (%s)\n", n.ID)
			return nil
		})
	},
}

var noteDeleteCmd = &cobra.Command{
	Use:   "delete <id|prefix>...",
	Short: "Delete notes (soft delete, propagated on sync)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLocal(cmd, func(ctx context.Context, _ *client.Profile, local *client.Local) error {
			for _, arg := range args {
				n, err := local.Notes.Delete(ctx, arg)
				if err != nil {
					return userError(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Note deleted (%s)\n", n.ID)
			}
			return nil
		})
	},
}

func init() {
	fs := noteSearchCmd.Flags()
	fs.StringSliceVar(&noteSearchFlag.tags, "tag", nil, "required tags, repeatable or comma separated")
	fs.StringVar(&noteSearchFlag.date, "date", "", "date filter: today, yesterday, last-week, past, YYYY-MM-DD ...")
	fs.IntVarP(&noteSearchFlag.limit, "limit", "l", 0, "maximum number of results")
	fs.IntVar(&noteSearchFlag.lines, "lines", 0, "lines of content to show per note")
	fs.StringVar(&noteSearchFlag.output, "output", string(client.OutputPretty), "output format: pretty, plain, json")
	fs.BoolVar(&noteSearchFlag.deleted, "deleted", false, "include deleted notes")

	fl := noteLastCmd.Flags()
	fl.StringSliceVar(&noteLastFlag.tags, "tag", nil, "required tags")
	fl.StringVar(&noteLastFlag.output, "output", string(client.OutputPretty), "output format: pretty, plain, json")

	noteShowCmd.Flags().StringVar(&noteShowOutput, "output", string(client.OutputPretty), "output format: pretty, plain, json")

	fe := noteEditCmd.Flags()
	fe.StringVar(&noteEditFlag.content, "content", "", "new content")
	fe.StringSliceVar(&noteEditFlag.tags, "tag", nil, "replace tags")
	fe.StringVar(&noteEditFlag.date, "date", "", "new subject date: today, yesterday, tomorrow, none or YYYY-MM-DD")
	fe.BoolVarP(&noteEditFlag.interactive, "interactive", "i", false, "edit the note in $VISUAL or $EDITOR")

	noteCmd.AddCommand(newNoteAddCmd("add"), noteSearchCmd, noteLastCmd, noteShowCmd, noteEditCmd, noteDeleteCmd)
	rootCmd.AddCommand(noteCmd, newNoteAddCmd("down"))
}
