package client

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/haierkeys/jot-sync-service/pkg/timex"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// templateDelimiter 头部与正文之间的分隔行
const templateDelimiter = "+++"

// ErrEditorAborted 用户在编辑器错误提示中选择放弃
var ErrEditorAborted = errors.New("edit aborted")

// NoteTemplate 编辑器中的笔记：TOML 头部 + 分隔行 + 正文
type NoteTemplate struct {
	Tags    []string `toml:"tags"`
	Date    string   `toml:"date"` // today、yesterday、tomorrow、none 或 YYYY-MM-DD
	Content string   `toml:"-"`
}

const templateHelp = `# tags = ["work", "important"]
# date = "today"  (today, yesterday, tomorrow, none or YYYY-MM-DD)
# content goes below the +++ line
`

// RenderTemplate 生成编辑器初始内容
func RenderTemplate(t *NoteTemplate) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(templateHelp)

	head := struct {
		Tags []string `toml:"tags"`
		Date string   `toml:"date"`
	}{Tags: t.Tags, Date: t.Date}
	if head.Tags == nil {
		head.Tags = []string{}
	}
	if head.Date == "" {
		head.Date = "today"
	}
	if err := toml.NewEncoder(&buf).Encode(head); err != nil {
		return "", errors.Wrap(err, "encode note header")
	}

	buf.WriteString(templateDelimiter + "\n")
	buf.WriteString(t.Content)
	return buf.String(), nil
}

// ParseTemplate 解析编辑结果
// 第一行仅为 +++ 的位置分隔头部与正文，正文中的 +++ 原样保留；没有分隔行时全部视为头部
func ParseTemplate(text string) (*NoteTemplate, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	head, body := lines, []string(nil)
	for i, line := range lines {
		if strings.TrimSpace(line) == templateDelimiter {
			head, body = lines[:i], lines[i+1:]
			break
		}
	}

	t := new(NoteTemplate)
	md, err := toml.Decode(strings.Join(head, "\n"), t)
	if err != nil {
		return nil, errors.Wrap(err, "note header")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("note header: unknown field %q", undecoded[0].String())
	}
	if _, err := timex.ParseDateSource(t.Date, time.Now()); err != nil {
		return nil, errors.Wrap(err, "note header date")
	}

	t.Content = strings.TrimRight(strings.Join(body, "\n"), "\n")
	return t, nil
}

// EditorCommand 依次读取 VISUAL、EDITOR，默认 vi
func EditorCommand() string {
	for _, key := range []string{"VISUAL", "EDITOR"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return "vi"
}

// Editor 调用外部编辑器编辑笔记
type Editor struct {
	// Command 编辑器命令，可带参数，例如 "code --wait"
	Command string
	// In / Out 解析失败时的交互提示
	In  io.Reader
	Out io.Writer
}

// NewEditor 使用环境变量中的编辑器
func NewEditor(in io.Reader, out io.Writer) *Editor {
	return &Editor{Command: EditorCommand(), In: in, Out: out}
}

// Open 把 text 写入临时文件，等待编辑器退出后读回
func (e *Editor) Open(ctx context.Context, text string) (string, error) {
	argv := strings.Fields(e.Command)
	if len(argv) == 0 {
		return "", errors.New("no editor configured")
	}

	f, err := os.CreateTemp("", "jot-*.md")
	if err != nil {
		return "", errors.Wrap(err, "create temp file")
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return "", errors.Wrap(err, "write temp file")
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrap(err, "close temp file")
	}

	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := cmd.Run(); err != nil {
		return "", errors.Wrapf(err, "editor %s", argv[0])
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(err, "read temp file")
	}
	return string(b), nil
}

// errorHeader 把解析错误以 TOML 注释的形式放在内容顶部
func errorHeader(err error, text string) string {
	var b strings.Builder
	b.WriteString("# ===== PARSING ERROR =====\n")
	for _, line := range strings.Split(err.Error(), "\n") {
		b.WriteString("# " + line + "\n")
	}
	b.WriteString("# ===== fix the issue below and save again =====\n\n")
	b.WriteString(text)
	return b.String()
}

// Compose 打开编辑器直到内容可以解析
// 解析失败时询问：重试（默认）、按纯文本保存、放弃
func (e *Editor) Compose(ctx context.Context, initial string) (*NoteTemplate, error) {
	in := bufio.NewReader(e.In)
	text := initial
	for {
		edited, err := e.Open(ctx, text)
		if err != nil {
			return nil, err
		}
		t, perr := ParseTemplate(edited)
		if perr == nil {
			return t, nil
		}

		fmt.Fprintf(e.Out, "Error parsing note: %v\n[R]etry, [S]ave as plain text, [A]bort? (R/s/a): ", perr)
		choice, rerr := in.ReadString('\n')
		if rerr != nil && choice == "" {
			return nil, ErrEditorAborted
		}
		switch strings.ToLower(strings.TrimSpace(choice)) {
		case "s":
			return &NoteTemplate{Content: edited}, nil
		case "a":
			return nil, ErrEditorAborted
		default:
			text = errorHeader(perr, edited)
		}
	}
}
