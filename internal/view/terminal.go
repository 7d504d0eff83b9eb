package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	cellStyle = lipgloss.NewStyle().
			Width(5).
			Height(1).
			Align(lipgloss.Center).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))

	cursorCellStyle = cellStyle.
			BorderForeground(lipgloss.Color("170"))

	winningCellStyle = cellStyle.
				BorderForeground(lipgloss.Color("42"))

	xStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51"))
	oStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))

	thinkingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Italic(true)
	commentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("147")).Italic(true)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

const terminalHelp = "arrows/hjkl move • enter/space or 1-9 play • m mode • r reset • q quit"

// RenderTerminal draws the board for the terminal UI. cursor is the highlighted cell, -1 for none.
func RenderTerminal(board Board, cursor int, errMsg string) string {
	var b strings.Builder

	mode := "2 Player"
	if board.IsWithAI() {
		mode = "VS Gemini"
	}

	b.WriteString(titleStyle.Render("Gemini Tic-Tac-Toe") + "  " + helpStyle.Render("["+mode+"]"))
	b.WriteString("\n\n")

	status := board.Status
	if board.Thinking {
		status += " " + thinkingStyle.Render(ThinkingText)
	}
	b.WriteString(status)
	b.WriteString("\n")

	rows := make([]string, 0, 3)
	for _, row := range board.Rows() {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, renderCell(cell, cell.Index == cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, rows...))
	b.WriteString("\n")

	if board.Comment != "" {
		b.WriteString(commentStyle.Render("\"" + board.Comment + "\""))
		b.WriteString("\n")
	}

	if errMsg != "" {
		b.WriteString(errorStyle.Render(errMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(terminalHelp))
	b.WriteString("\n")

	return b.String()
}

func renderCell(cell Cell, selected bool) string {
	style := cellStyle
	switch {
	case cell.Winning:
		style = winningCellStyle
	case selected:
		style = cursorCellStyle
	}

	var mark string
	switch cell.Mark {
	case entity.PlayerX:
		mark = xStyle.Render(cell.Mark)
	case entity.PlayerO:
		mark = oStyle.Render(cell.Mark)
	default:
		mark = helpStyle.Render(string(rune('1' + cell.Index)))
	}

	return style.Render(mark)
}
