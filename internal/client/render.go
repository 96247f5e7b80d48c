package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/haierkeys/jot-sync-service/internal/domain"
	"github.com/haierkeys/jot-sync-service/internal/dto"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
)

// OutputFormat 笔记列表的输出格式
type OutputFormat string

const (
	OutputPretty OutputFormat = "pretty"
	OutputPlain  OutputFormat = "plain"
	OutputJSON   OutputFormat = "json"
)

// shortIDLen pretty 输出中显示的 ID 长度
const shortIDLen = 8

// headerStyles pretty 输出的标题配色，非终端输出时不带转义序列
type headerStyles struct {
	id, date, tag, deleted lipgloss.Style
}

func newHeaderStyles(w io.Writer) headerStyles {
	r := lipgloss.NewRenderer(w)
	return headerStyles{
		id:      r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		date:    r.NewStyle().Foreground(lipgloss.Color("4")),
		tag:     r.NewStyle().Foreground(lipgloss.Color("6")),
		deleted: r.NewStyle().Faint(true),
	}
}

// ParseOutputFormat 校验输出格式
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case OutputPretty, OutputPlain, OutputJSON:
		return f, nil
	}
	return "", errors.Errorf("unknown output format %q (pretty, plain, json)", s)
}

// RenderOptions 输出选项
type RenderOptions struct {
	Format OutputFormat
	// Lines 每条笔记最多显示的行数，0 表示全部
	Lines int
}

// Render 按格式输出笔记
func Render(w io.Writer, notes []*domain.Note, opts RenderOptions) error {
	switch opts.Format {
	case OutputJSON:
		records, err := dto.NewNoteRecords(notes)
		if err != nil {
			return err
		}
		raw, err := sonic.ConfigStd.MarshalIndent(records, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encode notes")
		}
		_, err = fmt.Fprintln(w, string(raw))
		return err
	case OutputPlain:
		for _, n := range notes {
			if _, err := fmt.Fprintln(w, truncateLines(n.Content, opts.Lines)); err != nil {
				return err
			}
		}
		return nil
	}

	st := newHeaderStyles(w)
	for i, n := range notes {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s\n%s\n", st.header(n), truncateLines(n.Content, opts.Lines)); err != nil {
			return err
		}
	}
	return nil
}

func (st headerStyles) header(n *domain.Note) string {
	id := n.ID
	if len(id) > shortIDLen {
		id = id[:shortIDLen]
	}
	parts := []string{st.id.Render("[" + id + "]")}
	if n.SubjectDate != nil {
		parts = append(parts, st.date.Render(*n.SubjectDate))
	}
	for _, t := range n.Tags {
		parts = append(parts, st.tag.Render("#"+t))
	}
	if n.IsDeleted() {
		parts = append(parts, st.deleted.Render("(deleted)"))
	}
	return strings.Join(parts, " ")
}

func truncateLines(s string, n int) string {
	if n <= 0 {
		return s
	}
	lines := strings.SplitN(s, "\n", n+1)
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n") + "\n..."
}
