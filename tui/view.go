package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"rollcall-users/models"
	"rollcall-users/screen"
)

// Theme holds the styles of the users screen.
type Theme struct {
	Title    lipgloss.Style
	Error    lipgloss.Style
	Header   lipgloss.Style
	Selected lipgloss.Style
	Editing  lipgloss.Style
	Prompt   lipgloss.Style
	Status   lipgloss.Style
	Help     lipgloss.Style
}

// DefaultTheme is the built-in color scheme.
var DefaultTheme = Theme{
	Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
	Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	Header:   lipgloss.NewStyle().Bold(true).Underline(true),
	Selected: lipgloss.NewStyle().Reverse(true),
	Editing:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	Prompt:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
	Status:   lipgloss.NewStyle().Faint(true),
	Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
}

// Column widths of the user table, ID first.
var columnWidths = [4]int{6, 26, 16, 12}

// View renders the screen.
func (model Model) View() string {
	state := model.controller.Snapshot()

	var sections []string
	sections = append(sections, model.theme.Title.Render("Users"))
	if state.Error != "" {
		sections = append(sections, model.theme.Error.Render(state.Error))
	}
	sections = append(sections, model.renderAddForm(), "")
	sections = append(sections, model.renderTable(state))

	switch {
	case model.mode == modeConfirm && model.pending != nil:
		sections = append(sections, "", model.theme.Prompt.Render(model.pending.prompt+" [y/n]"))
	case model.status != "":
		sections = append(sections, "", model.theme.Status.Render(model.status))
	}

	sections = append(sections, "", model.theme.Help.Render(model.renderHelp()))
	return strings.Join(sections, "\n")
}

func (model Model) renderAddForm() string {
	if model.mode != modeAdd {
		return "New user: press " + model.keys.Add.Help().Key + " to add"
	}
	var cells []string
	for i := range model.inputs {
		cells = append(cells, "["+model.inputs[i].View()+"]")
	}
	return "New user: " + strings.Join(cells, " ")
}

func (model Model) renderTable(state screen.State) string {
	lines := []string{model.theme.Header.Render(row("ID", "Full Name", "Student ID", "Class Name"))}
	if len(state.Users) == 0 {
		lines = append(lines, "No users.")
		return strings.Join(lines, "\n")
	}

	for i, user := range state.Users {
		line := model.renderRow(state, user)
		switch {
		case state.Editing(user.ID):
			line = model.theme.Editing.Render(line)
		case i == model.cursor && model.mode != modeAdd:
			line = model.theme.Selected.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (model Model) renderRow(state screen.State, user models.User) string {
	if state.Editing(user.ID) && model.mode != modeAdd {
		return row(user.ID,
			model.inputs[fieldFullName].View(),
			model.inputs[fieldStudentID].View(),
			model.inputs[fieldClassName].View(),
		)
	}
	return row(user.ID, user.FullName, user.StudentID, user.ClassName)
}

// row lays out four cells at the table's column widths.
func row(cells ...string) string {
	var b strings.Builder
	for i, cell := range cells {
		width := columnWidths[i]
		cell = ansi.Truncate(cell, width-1, "…")
		b.WriteString(cell)
		if pad := width - ansi.StringWidth(cell); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
	}
	return strings.TrimRight(b.String(), " ")
}

func (model Model) renderHelp() string {
	var bindings []key.Binding
	switch model.mode {
	case modeConfirm:
		bindings = []key.Binding{model.keys.Yes, model.keys.No}
	case modeAdd:
		bindings = []key.Binding{model.keys.Submit, model.keys.NextField, model.keys.Cancel}
	case modeEdit:
		bindings = []key.Binding{model.keys.Submit, model.keys.NextField, model.keys.Cancel}
	default:
		bindings = []key.Binding{
			model.keys.Up, model.keys.Down, model.keys.Add, model.keys.Edit,
			model.keys.Delete, model.keys.Reload, model.keys.Export, model.keys.Quit,
		}
	}

	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return strings.Join(parts, " • ")
}
