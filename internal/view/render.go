package view

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/starford/lectio/internal/index"
)

const timeLayout = "2006-01-02 15:04:05"

// Table renders chapter rows as a bordered terminal table.
func Table(rows []Row) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers("#", "Chapter", "Attended", "Missed", "Absence")

	for _, r := range rows {
		if r.Kind == KindModule {
			t.Row("", r.Name, "", "", "")
			continue
		}
		name := r.Name
		if r.Selected {
			name = "> " + name
		}
		t.Row(strconv.Itoa(r.Number), name, strconv.Itoa(r.Attended), strconv.Itoa(r.Missed), r.AbsenceRate+"%")
	}

	t.StyleFunc(func(row, _ int) lipgloss.Style {
		if row == table.HeaderRow {
			return styleHeader
		}
		if row < 0 || row >= len(rows) {
			return styleCell
		}
		switch {
		case rows[row].Kind == KindModule:
			return styleModule
		case rows[row].Selected:
			return styleSelected
		}
		return styleCell
	})
	return t.String()
}

// Cards renders note cards one after another.
func Cards(cards []Card) string {
	if len(cards) == 0 {
		return styleCardMeta.Render("No notes found")
	}
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		var b strings.Builder
		b.WriteString(styleCardMeta.Render(
			"#" + strconv.FormatInt(c.ID, 10) +
				"  Created: " + c.CreatedAt.Format(timeLayout) +
				"  Last Edited: " + c.LastEditedAt.Format(timeLayout) +
				"  Author: " + c.Author))
		b.WriteByte('\n')
		b.WriteString(c.Text)
		if len(c.Tags) > 0 {
			b.WriteByte('\n')
			tags := make([]string, len(c.Tags))
			for i, tag := range c.Tags {
				tags[i] = styleTag.Render("#" + tag)
			}
			b.WriteString(strings.Join(tags, " "))
		}
		style := styleCard
		if c.IsEditing {
			style = styleCardEditing
		}
		out = append(out, style.Render(b.String()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, out...)
}

// SearchTable renders index hits.
func SearchTable(results []index.SearchResult) string {
	if len(results) == 0 {
		return styleCardMeta.Render("No matches")
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers("Chapter", "Note", "Snippet", "Tags")
	for _, r := range results {
		t.Row(r.ChapterID, strconv.FormatInt(r.NoteID, 10), r.Snippet, strings.Join(r.Tags, ", "))
	}
	t.StyleFunc(func(row, _ int) lipgloss.Style {
		if row == table.HeaderRow {
			return styleHeader
		}
		return styleCell
	})
	return t.String()
}
