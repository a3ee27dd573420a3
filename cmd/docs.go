package cmd

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// https://pmarsceill.github.io/just-the-docs/docs/navigation-structure/
const rootPage = `---
layout: default
title: %s
nav_order: %d
has_children: true
permalink: /
---
`

// child command without children
const childPage = `---
layout: default
title: %s
parent: %s
nav_order: %d
---
`

// child with children
const childParentPage = `---
layout: default
title: %s
parent: %s
nav_order: %d
has_children: true
---
`

// grandchildren
const grandchildPage = `---
layout: default
title: %s
parent: %s
grand_parent: %s
nav_order: %d
---
`

// docType codes whether the command is a grandchild, child, etc
type docType int

const (
	root docType = iota
	child
	childParent
	grandchild
)

// meta is for describing the position/info for a command doc page
type meta struct {
	docType     docType
	title       string
	navOrder    int
	parent      string
	grandParent string
}

// docsCmd writes Markdown docs for every command
var docsCmd = &cobra.Command{
	Use:    "docs [dir]",
	Short:  "Write Markdown documentation of every command",
	Args:   cobra.MaximumNArgs(1),
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "./docs"
		if len(args) > 0 {
			dir = args[0]
		}
		return makeDocs(RootCmd, dir)
	},
}

// makeDocs parses the commands and outputs Markdown documentation files
func makeDocs(rootCmd *cobra.Command, dir string) error {
	metas := docMetas(rootCmd)
	prepend := func(filename string) string {
		return filePrepender(metas, filename)
	}
	if err := doc.GenMarkdownTreeCustom(rootCmd, dir, prepend, linkHandler(rootCmd.Name())); err != nil {
		return fmt.Errorf("failed to write docs: %w", err)
	}
	return nil
}

// docMetas maps the base Markdown file name of every command to its page meta
func docMetas(rootCmd *cobra.Command) map[string]meta {
	metas := map[string]meta{
		docName(rootCmd): {docType: root, title: rootCmd.Name()},
	}
	for i, c := range available(rootCmd) {
		m := meta{docType: child, title: c.Name(), navOrder: i, parent: rootCmd.Name()}
		children := available(c)
		if len(children) > 0 {
			m.docType = childParent
		}
		metas[docName(c)] = m

		for j, gc := range children {
			metas[docName(gc)] = meta{
				docType:     grandchild,
				title:       gc.Name(),
				navOrder:    j,
				parent:      c.Name(),
				grandParent: rootCmd.Name(),
			}
		}
	}
	return metas
}

// available are the documented subcommands, in the order cobra lists them
func available(c *cobra.Command) []*cobra.Command {
	var cmds []*cobra.Command
	for _, sub := range c.Commands() {
		if sub.IsAvailableCommand() && !sub.IsAdditionalHelpTopicCommand() {
			cmds = append(cmds, sub)
		}
	}
	return cmds
}

func docName(c *cobra.Command) string {
	return strings.ReplaceAll(c.CommandPath(), " ", "_")
}

// filePrepender adds YAML headings that are required by the just-the-docs theme
// https://github.com/spf13/cobra/blob/master/doc/md_docs.md
func filePrepender(metas map[string]meta, filename string) string {
	name := filepath.Base(filename)
	base := strings.TrimSuffix(name, path.Ext(name))
	m, ok := metas[base]
	if !ok {
		return ""
	}

	switch m.docType {
	case root:
		return fmt.Sprintf(rootPage, m.title, m.navOrder)
	case child:
		return fmt.Sprintf(childPage, m.title, m.parent, m.navOrder)
	case childParent:
		return fmt.Sprintf(childParentPage, m.title, m.parent, m.navOrder)
	case grandchild:
		return fmt.Sprintf(grandchildPage, m.title, m.parent, m.grandParent, m.navOrder)
	}
	return ""
}

// linkHandler returns the URL to a documentation page
func linkHandler(rootName string) func(string) string {
	return func(filename string) string {
		name := filepath.Base(filename)
		base := strings.TrimSuffix(name, path.Ext(name))
		if base == rootName {
			return "/"
		}
		return base
	}
}

func init() {
	RootCmd.AddCommand(docsCmd)
}
