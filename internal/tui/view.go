package tui

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gallery-viewer/internal/slideshow"
	"gallery-viewer/internal/viewer"
)

// The modal body starts two rows into the panel (border and padding) and
// the media block sits below the title and a blank line.
const (
	modalMediaTop  = 4
	modalMediaRows = 3
	modalMaxWidth  = 72
)

// toastExpiredMsg wakes the program so an expired toast disappears.
type toastExpiredMsg struct{}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	switch m.phase {
	case phaseNavigating:
		return m.centered(m.spinner.View() + " Opening gallery…")
	case phaseError:
		return m.errorView()
	}
	if v := m.surface.snapshot(); v.Open {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.modalPanel(v),
			lipgloss.WithWhitespaceChars("·"),
			lipgloss.WithWhitespaceForeground(colorMuted))
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.headerView(), m.grid.View(), m.footerView())
}

func (m Model) centered(s string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, s)
}

func (m Model) headerView() string {
	title := m.styles.Header.Render("◆ " + m.params.Folder)
	var status string
	if m.session != nil {
		status = m.session.Status()
	}
	if m.phase == phaseLoading {
		status = m.spinner.View() + " " + status
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(title + "  " + m.styles.Muted.Render(status))
}

func (m Model) footerView() string {
	if msg, _ := m.toasts.current(); msg != "" {
		return m.styles.Toast.Render(msg)
	}
	return m.help.ShortHelpView(m.keys.gridHelp())
}

func (m Model) errorView() string {
	route := m.route
	if route == nil {
		route = clientError()
	}
	title := m.styles.Danger.Bold(true).Render(fmt.Sprintf("%d %s", route.Code, http.StatusText(route.Code)))
	body := []string{title, "", viewer.ReasonMessage(route.Reason), ""}
	if m.token != "" {
		body = append(body, m.styles.Muted.Render("r: open the link again · q: quit"))
	} else {
		body = append(body, m.styles.Muted.Render("q: quit"))
	}
	return m.centered(m.styles.Error.Render(strings.Join(body, "\n")))
}

func (m Model) modalWidth() int {
	return max(20, min(m.width-4, modalMaxWidth))
}

// modalPanel renders the slideshow modal without its backdrop.
func (m Model) modalPanel(v modalView) string {
	width := m.modalWidth()
	inner := width - 4
	st := m.styles

	lines := []string{st.ModalTitle.Render(truncate(v.Title, inner)), ""}
	switch {
	case v.Image != nil:
		img := v.Image
		lines = append(lines,
			fmt.Sprintf("▣ %d×%d  %s", img.Width, img.Height, formatSize(img.Size)),
			st.Muted.Render(truncate(img.ContentType, inner)),
			st.Muted.Render(truncate(img.URL, inner)),
		)
	case v.Video != "":
		lines = append(lines,
			"▶ video",
			"",
			st.Muted.Render(truncate(v.Video, inner)),
		)
	default:
		lines = append(lines, st.Muted.Render("… loading"), "", "")
	}

	lines = append(lines, "")
	if v.Backdrop != "" {
		lines = append(lines, st.Muted.Render(truncate("backdrop "+v.Backdrop, inner)))
	}
	if v.DownloadName != "" {
		lines = append(lines, truncate("download "+v.DownloadName, inner))
	}
	if pos := m.position(); pos != "" {
		lines = append(lines, "", st.Muted.Render(pos))
	}
	lines = append(lines, "", m.help.ShortHelpView(m.keys.modalHelp()))

	return st.Modal.Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) position() string {
	ctrl, ok := m.modalOpen()
	if !ok {
		return ""
	}
	n := m.session.Order().Len()
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%d / %d", ctrl.Position()+1, n)
}

// clickTarget maps a screen cell to what the modal shows there.
func (m Model) clickTarget(x, y int) slideshow.ClickTarget {
	v := m.surface.snapshot()
	panel := m.modalPanel(v)
	w, h := lipgloss.Width(panel), lipgloss.Height(panel)
	left, top := max(0, (m.width-w)/2), max(0, (m.height-h)/2)

	if x < left || x >= left+w || y < top || y >= top+h {
		return slideshow.ClickBackdrop
	}
	if v.Image != nil && y >= top+modalMediaTop && y < top+modalMediaTop+modalMediaRows {
		return slideshow.ClickImage
	}
	return slideshow.ClickStage
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
