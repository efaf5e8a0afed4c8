package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/and161185/shiftreport/internal/model"
	"github.com/and161185/shiftreport/internal/screen"
)

type listView struct {
	reports []model.Report
	cursor  int
	err     string
}

func (m *Model) mountList() tea.Cmd {
	m.list = listView{}
	m.attach(m.deps.Bridge.BackButton(), "", eventMsg{gen: m.gen, ev: screen.BackToProfile{}})

	gen, ctx, user, reports := m.gen, m.ctx, *m.state.User, m.deps.Reports
	return m.startBusy(func() tea.Msg {
		list, err := reports.Recent(ctx, user)
		return reportsMsg{gen: gen, reports: list, err: err}
	})
}

func (m *Model) onReports(msg reportsMsg) tea.Cmd {
	m.busy = false
	if msg.err != nil {
		m.list.err = msg.err.Error()
		return nil
	}
	m.list.reports = msg.reports
	return nil
}

func (m *Model) listKey(k tea.KeyMsg) tea.Cmd {
	v := &m.list
	switch k.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.reports)-1 {
			v.cursor++
		}
	case "enter":
		if v.cursor < len(v.reports) {
			return m.dispatch(screen.StartEdit{Report: v.reports[v.cursor]})
		}
	}
	return nil
}

var shortMonths = [...]string{"янв.", "февр.", "мар.", "апр.", "мая", "июн.", "июл.", "авг.", "сент.", "окт.", "нояб.", "дек."}

// shortDate renders an ISO date as "17 окт.".
func shortDate(s string) string {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return "??:??"
	}
	return fmt.Sprintf("%02d %s", t.Day(), shortMonths[t.Month()-1])
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func (m *Model) listView() string {
	s, v := m.styles, &m.list
	out := s.Title.Render("Последние 10 отчетов") + "\n"
	switch {
	case m.busy:
		return out
	case v.err != "":
		return out + s.Error.Render(v.err) + "\n"
	case len(v.reports) == 0:
		return out + s.Hint.Render("Нет отчетов для редактирования.") + "\n"
	}
	for i, r := range v.reports {
		marker := "  "
		if i == v.cursor {
			marker = s.Cursor.Render("› ")
		}
		out += fmt.Sprintf("%s%s  %s  %s  %s\n", marker,
			s.Label.Render(shortDate(r.Payload.Date)),
			s.Value.Render(orDefault(r.Payload.Project, "Без проекта")),
			orDefault(r.Payload.Vehicle, "Без техники"),
			s.Hint.Render(fmt.Sprintf("#%d %s", r.ReportID, r.Status)))
	}
	return out
}
