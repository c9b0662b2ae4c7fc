package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/vango-dev/mini/pkg/element"
	"github.com/vango-dev/mini/pkg/fiber"
	"github.com/vango-dev/mini/pkg/snapshot"
)

var (
	accent = lipgloss.Color("#8BC34A")
	muted  = lipgloss.Color("#7a8599")
	warm   = lipgloss.Color("#FFC107")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	okStyle    = lipgloss.NewStyle().Foreground(accent)
	tagStyle   = lipgloss.NewStyle().Foreground(accent)
	propStyle  = lipgloss.NewStyle().Foreground(muted)
	textStyle  = lipgloss.NewStyle().Foreground(warm)
	enumStyle  = lipgloss.NewStyle().Foreground(muted).PaddingRight(1)
)

// hostTree renders a snapshot's host tree. The container is the root.
func hostTree(n *snapshot.Node) *tree.Tree {
	t := tree.Root(tagStyle.Render("container")).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(enumStyle)
	if n == nil {
		return t
	}
	for _, c := range n.Children {
		t.Child(hostNode(c))
	}
	return t
}

func hostNode(n *snapshot.Node) any {
	if n.Type == element.TextType {
		return textStyle.Render(fmt.Sprintf("%q", fmt.Sprint(n.Props[element.NodeValueKey])))
	}
	label := tagStyle.Render("<"+n.Type+">") + describeProps(n)
	if len(n.Children) == 0 {
		return label
	}
	t := tree.Root(label).Enumerator(tree.RoundedEnumerator).EnumeratorStyle(enumStyle)
	for _, c := range n.Children {
		t.Child(hostNode(c))
	}
	return t
}

func describeProps(n *snapshot.Node) string {
	var parts []string
	keys := make([]string, 0, len(n.Props))
	for k := range n.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, n.Props[k]))
	}
	for _, ev := range n.Events {
		parts = append(parts, "on:"+ev)
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + propStyle.Render(strings.Join(parts, " "))
}

// fiberTree renders a snapshot's fiber tree.
func fiberTree(n *snapshot.FiberNode) *tree.Tree {
	t := tree.Root(fiberLabel(n)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(enumStyle)
	for _, c := range n.Children {
		if len(c.Children) == 0 {
			t.Child(fiberLabel(c))
		} else {
			t.Child(fiberTree(c))
		}
	}
	return t
}

func fiberLabel(n *snapshot.FiberNode) string {
	label := tagStyle.Render(n.Name)
	if n.States > 0 || n.Effects > 0 {
		label += " " + propStyle.Render(fmt.Sprintf("states=%d effects=%d", n.States, n.Effects))
	}
	return label
}

// commitLine summarizes one commit.
func commitLine(s fiber.CommitStats) string {
	return fmt.Sprintf("%-7s units=%d placements=%d updates=%d deletions=%d effects=%d cleanups=%d live=%d",
		s.Kind, s.Units, s.Placements, s.Updates, s.Deletions, s.EffectsRun, s.Cleanups, s.LiveFibers)
}
