package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/marcin-skalski/patchwatch/internal/game"
	"github.com/marcin-skalski/patchwatch/internal/i18n"
	"github.com/marcin-skalski/patchwatch/internal/orchestrator"
	"github.com/marcin-skalski/patchwatch/internal/patch"
	"github.com/marcin-skalski/patchwatch/internal/selection"
)

func renderView(m Model) string {
	var b strings.Builder
	lang := m.lang
	sel := m.machine.Current()

	// Header
	header := fmt.Sprintf("%s │ %s", i18n.T(lang, i18n.Title), strings.ToUpper(string(lang)))
	b.WriteString(headerStyle.Render(header))
	if m.streamDown {
		b.WriteString(" ")
		b.WriteString(warnStyle.Render("⚠ " + i18n.T(lang, i18n.StreamDisconnected)))
	}
	b.WriteString("\n\n")

	b.WriteString(renderTabs(sel, lang))
	b.WriteString("\n")

	switch {
	case sel.Mode == selection.Latest:
		b.WriteString(sectionStyle.Render(i18n.Heading(lang, i18n.LatestDataFor, sel.Game.String())))
		b.WriteString("\n")
		b.WriteString(renderSnapshot(m.orch.Snapshot(), i18n.ErrorLoadingLatest, lang, m.spinner.View(), m.width))

	case sel.Browsing():
		b.WriteString(sectionStyle.Render(i18n.Heading(lang, i18n.ArchiveDataFor, sel.Game.String())))
		b.WriteString("\n")
		b.WriteString(renderIndex(m.orch.Index(), m.cursor, lang, m.spinner.View(), m.width))

	default:
		title := i18n.Heading(lang, i18n.ArchiveDataFor, sel.Game.String())
		if e, ok := m.orch.Index().Data.Find(sel.ArchiveKey); ok {
			title += " │ " + formatEntry(e, lang)
		}
		b.WriteString(sectionStyle.Render(title))
		b.WriteString("\n")
		b.WriteString(renderSnapshot(m.orch.Snapshot(), i18n.ErrorLoadingArchive, lang, m.spinner.View(), m.width))
	}

	if m.showRaw {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(i18n.T(lang, i18n.RawJSON)))
		b.WriteString("\n")
		b.WriteString(m.raw.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render(i18n.T(lang, i18n.Statistics)))
	b.WriteString("\n")
	b.WriteString(renderStats(m.orch.Stats(), lang))

	// Footer
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(i18n.T(lang, i18n.Help)))

	return b.String()
}

func renderTabs(sel selection.Selection, lang i18n.Lang) string {
	var games []string
	for i, g := range game.All {
		label := fmt.Sprintf("%d %s", i+1, g)
		if g == sel.Game {
			games = append(games, activeTabStyle.Render(label))
		} else {
			games = append(games, tabStyle.Render(label))
		}
	}

	latest, archive := tabStyle, tabStyle
	if sel.Mode == selection.Latest {
		latest = activeTabStyle
	} else {
		archive = activeTabStyle
	}
	modes := []string{
		latest.Render(i18n.T(lang, i18n.LatestPatch)),
		archive.Render(i18n.T(lang, i18n.PatchArchive)),
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, games...) + "\n" +
		lipgloss.JoinHorizontal(lipgloss.Top, modes...)
}

func renderSnapshot(s orchestrator.FetchState[*patch.Snapshot], errKey i18n.Key, lang i18n.Lang, spin string, width int) string {
	switch s.Status {
	case orchestrator.Loading:
		return spin + " " + i18n.T(lang, i18n.PatchLoading) + "\n"
	case orchestrator.Failed:
		return errorStyle.Render(i18n.T(lang, errKey)+" "+s.Err) + "\n"
	case orchestrator.Idle:
		return ""
	}

	snap := s.Data
	var b strings.Builder
	if line := impactLine(snap, lang); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(snap.Changes) == 0 {
		b.WriteString(emptyStyle.Render("  " + i18n.T(lang, i18n.NoChanges)))
		b.WriteString("\n")
		return b.String()
	}

	groups := snap.Group()
	for _, t := range patch.ChangeTypes {
		changes := groups[t]
		if len(changes) == 0 {
			continue
		}
		style := lipgloss.NewStyle().Foreground(changeColor(t))
		b.WriteString(style.Bold(true).Render(fmt.Sprintf("%s (%d)", i18n.T(lang, groupKey(t)), len(changes))))
		b.WriteString("\n")
		for _, c := range changes {
			b.WriteString(style.Render(truncate(formatChange(c, lang), width)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func impactLine(s *patch.Snapshot, lang i18n.Lang) string {
	if !s.HasImpact() {
		return ""
	}
	score := strconv.FormatFloat(*s.ImpactScore, 'f', -1, 64) + " / 10"
	if label := impactLabel(s.ImpactLabel, lang); label != "" {
		score = label + " (" + score + ")"
	}
	style := lipgloss.NewStyle().Bold(true).Foreground(impactColor(s.ImpactLabel))
	return i18n.T(lang, i18n.ImpactScore) + " " + style.Render(score)
}

func impactLabel(l patch.ImpactLabel, lang i18n.Lang) string {
	switch l {
	case patch.ImpactHigh:
		return i18n.T(lang, i18n.ImpactHigh)
	case patch.ImpactMedium:
		return i18n.T(lang, i18n.ImpactMedium)
	case patch.ImpactLow:
		return i18n.T(lang, i18n.ImpactLow)
	default:
		return ""
	}
}

func groupKey(t patch.ChangeType) i18n.Key {
	switch t {
	case patch.Buff:
		return i18n.Buffs
	case patch.Nerf:
		return i18n.Nerfs
	case patch.New:
		return i18n.NewContent
	case patch.Fix:
		return i18n.Fixes
	default:
		return i18n.Other
	}
}

func formatChange(c patch.Change, lang i18n.Lang) string {
	target := c.Target
	if c.Ability != "" {
		target += " (" + c.Ability + ")"
	}
	return fmt.Sprintf("  • %s: %s", target, i18n.Resolve(c.Details, lang))
}

func renderIndex(s orchestrator.FetchState[patch.ArchiveIndex], cursor int, lang i18n.Lang, spin string, width int) string {
	switch s.Status {
	case orchestrator.Loading:
		return spin + " " + i18n.T(lang, i18n.ArchiveListLoading) + "\n"
	case orchestrator.Failed:
		return errorStyle.Render(i18n.T(lang, i18n.ErrorLoadingList)+" "+s.Err) + "\n"
	case orchestrator.Idle:
		return ""
	}

	if len(s.Data) == 0 {
		return emptyStyle.Render("  "+i18n.T(lang, i18n.ArchiveNotFound)) + "\n"
	}

	var b strings.Builder
	b.WriteString(emptyStyle.Render(i18n.T(lang, i18n.ArchiveSelectPrompt)))
	b.WriteString("\n")
	for i, e := range s.Data {
		line := truncate(formatEntry(e, lang), width-2)
		if i == cursor {
			b.WriteString(selectedItemStyle.Render("▸ " + line))
		} else {
			b.WriteString(itemStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// formatEntry renders one archive row: date, impact label and version.
func formatEntry(e patch.ArchiveEntry, lang i18n.Lang) string {
	label := impactLabel(patch.ParseImpactLabel(e.ImpactLabel), lang)
	if label == "" {
		label = i18n.T(lang, i18n.NoInfo)
	}
	version := e.PatchVersion
	if version == "" {
		version = "v?"
	}
	return fmt.Sprintf("%s │ %s │ %s", i18n.FormatTime(e.Date, lang), label, version)
}

func renderStats(s orchestrator.FetchState[*patch.Stats], lang i18n.Lang) string {
	switch s.Status {
	case orchestrator.Idle, orchestrator.Loading:
		return emptyStyle.Render("  "+i18n.T(lang, i18n.StatsLoading)) + "\n"
	case orchestrator.Failed:
		return errorStyle.Render(i18n.T(lang, i18n.StatsError)+" "+s.Err) + "\n"
	}

	st := s.Data
	if st == nil || st.Message != "" || st.TotalRequestsAnalyzed == 0 {
		return emptyStyle.Render("  "+i18n.T(lang, i18n.NoStats)) + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  %s %d\n", i18n.T(lang, i18n.TotalRequests), st.TotalRequestsAnalyzed)
	fmt.Fprintf(&b, "  %s %d\n", i18n.T(lang, i18n.TotalErrors), st.TotalErrors)
	if st.MostPopularGame != "" {
		fmt.Fprintf(&b, "  %s %s\n", i18n.T(lang, i18n.MostPopular), st.MostPopularGame)
	}
	if counts := st.ByGame(); len(counts) > 0 {
		fmt.Fprintf(&b, "  %s\n", i18n.T(lang, i18n.RequestsByGame))
		for _, c := range counts {
			fmt.Fprintf(&b, "    • %s: %d\n", c.Game, c.Count)
		}
	}
	return b.String()
}

func truncate(s string, width int) string {
	if width <= 3 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
