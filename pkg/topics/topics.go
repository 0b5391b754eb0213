// Package topics serves long-form help topics through a custom cobra help
// command. Topics are markdown or text files carried in an embedded
// filesystem, so the binary documents the disk layout it produces without
// any install-time files.
package topics

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RaubJo/nixzfs/pkg/errors"
)

// Topic is one help document
type Topic struct {
	Name    string
	Path    string
	Content string
}

// Manager holds the scanned topics and the renderer that formats them
type Manager struct {
	fsys         fs.FS
	topics       map[string]*Topic
	extensions   []string
	renderer     Renderer
	originalHelp func(*cobra.Command, []string)
}

// Options configures the Manager
type Options struct {
	// Extensions lists the file extensions treated as topics.
	// Defaults to .md and .txt.
	Extensions []string

	// Renderer formats topic content for the terminal.
	// Defaults to PlainRenderer.
	Renderer Renderer
}

// New creates a Manager over an embedded topic filesystem
func New(fsys fs.FS, opts Options) *Manager {
	m := &Manager{
		fsys:       fsys,
		topics:     make(map[string]*Topic),
		extensions: opts.Extensions,
		renderer:   opts.Renderer,
	}
	if len(m.extensions) == 0 {
		m.extensions = []string{".md", ".txt"}
	}
	if m.renderer == nil {
		m.renderer = &PlainRenderer{}
	}
	return m
}

// scan loads every topic file from the filesystem
func (m *Manager) scan() error {
	return fs.WalkDir(m.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := path.Ext(p)
		supported := false
		for _, e := range m.extensions {
			if ext == e {
				supported = true
				break
			}
		}
		if !supported {
			return nil
		}

		content, err := fs.ReadFile(m.fsys, p)
		if err != nil {
			return err
		}

		name := strings.TrimSuffix(path.Base(p), ext)
		m.topics[name] = &Topic{
			Name:    name,
			Path:    p,
			Content: string(content),
		}
		return nil
	})
}

// Get retrieves a topic by name
func (m *Manager) Get(name string) (*Topic, bool) {
	topic, ok := m.topics[name]
	return topic, ok
}

// List returns all topic names, sorted
func (m *Manager) List() []string {
	names := make([]string, 0, len(m.topics))
	for name := range m.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// render formats one topic for display
func (m *Manager) render(topic *Topic) string {
	return m.renderer.Render(topic.Content, path.Ext(topic.Path))
}

// Initialize replaces the root help command with one that also resolves
// topics. `help <topic>` prints the rendered document, `help topics`
// lists what is available, and anything else falls back to the standard
// command help.
func Initialize(rootCmd *cobra.Command, fsys fs.FS, opts Options) error {
	m := New(fsys, opts)
	if err := m.scan(); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to scan help topics")
	}

	m.originalHelp = rootCmd.HelpFunc()

	helpCmd := &cobra.Command{
		Use:   "help [command or topic]",
		Short: "Help about any command or topic",
		Long: `Help shows usage for any command and documentation for any topic.

To see the available topics:
  ` + rootCmd.Name() + ` help topics`,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			completions := []string{"topics"}
			for _, c := range rootCmd.Commands() {
				if !c.Hidden {
					completions = append(completions, c.Name())
				}
			}
			completions = append(completions, m.List()...)
			return completions, cobra.ShellCompDirectiveNoFileComp
		},
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				m.originalHelp(rootCmd, []string{})
				return
			}

			if args[0] == "topics" {
				names := m.List()
				if len(names) == 0 {
					fmt.Fprintln(out, "No help topics available.")
					return
				}
				fmt.Fprintln(out, "Available help topics:")
				for _, name := range names {
					fmt.Fprintf(out, "  %s\n", name)
				}
				fmt.Fprintf(out, "\nUse '%s help <topic>' to read one.\n", rootCmd.Name())
				return
			}

			if topic, ok := m.Get(args[0]); ok {
				fmt.Fprint(out, m.render(topic))
				return
			}

			// Not a topic: resolve a command path the way the stock help
			// command does
			if target, _, err := rootCmd.Find(args); err == nil && target != nil {
				m.originalHelp(target, args)
				return
			}
			m.originalHelp(rootCmd, args)
		},
	}

	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == "help" {
			rootCmd.RemoveCommand(cmd)
			break
		}
	}
	rootCmd.AddCommand(helpCmd)

	// --help also resolves topics
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			if topic, ok := m.Get(args[0]); ok {
				fmt.Fprint(cmd.OutOrStdout(), m.render(topic))
				return
			}
		}
		m.originalHelp(cmd, args)
	})

	return nil
}
