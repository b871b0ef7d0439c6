// Package tui is the terminal front end of the users screen: a table of
// users with an add form, in-place editing and a delete confirmation.
//
// All state that matters lives in a screen.Controller; the Model only
// keeps what the terminal needs (cursor, focused input, open prompt).
// Requests run as tea.Cmds so the screen stays responsive while they are
// in flight.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"rollcall-users/models"
	"rollcall-users/screen"
	"rollcall-users/sheet"
)

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeEdit
	modeConfirm
)

const (
	fieldFullName = iota
	fieldStudentID
	fieldClassName
	fieldCount
)

var placeholders = [fieldCount]string{"Full Name", "Student ID", "Class Name"}

type (
	loadedMsg         struct{ err error }
	deletedMsg        struct{ err error }
	confirmRequestMsg struct{ request confirmRequest }
	exportedMsg       struct {
		path  string
		count int
		err   error
	}
)

// submittedMsg answers an add or save from the form that sent it.
type submittedMsg struct {
	err  error
	form mode
}

// Model is the bubbletea model of the users screen.
type Model struct {
	ctx        context.Context
	controller *screen.Controller
	prompts    *PromptConfirmer
	exportPath string
	keys       KeyMap
	theme      Theme

	mode       mode
	returnMode mode // mode to restore once the prompt is answered
	pending    *confirmRequest
	cursor     int
	focus      int
	inputs     [fieldCount]textinput.Model
	status     string
	width      int
}

// NewModel creates the screen. prompts may be nil when the controller was
// given a different Confirmer.
func NewModel(ctx context.Context, controller *screen.Controller, prompts *PromptConfirmer, exportPath string) Model {
	model := Model{
		ctx:        ctx,
		controller: controller,
		prompts:    prompts,
		exportPath: exportPath,
		keys:       DefaultKeyMap,
		theme:      DefaultTheme,
	}
	for i := range model.inputs {
		input := textinput.New()
		input.Prompt = ""
		input.Placeholder = placeholders[i]
		model.inputs[i] = input
	}
	return model
}

// Init loads the user list and starts listening for confirmation prompts.
func (model Model) Init() tea.Cmd {
	return tea.Batch(model.loadCmd(), listenForConfirm(model.prompts))
}

// Update handles a message and returns the updated model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		return model, nil

	case loadedMsg:
		if model.mode == modeEdit && model.controller.Snapshot().EditID == "" {
			model.closeForm()
		}
		model.clampCursor()
		return model, nil

	case deletedMsg:
		model.clampCursor()
		return model, nil

	case submittedMsg:
		return model.handleSubmitted(message), nil

	case exportedMsg:
		if message.err != nil {
			model.status = fmt.Sprintf("export failed: %v", message.err)
		} else {
			model.status = fmt.Sprintf("exported %d users to %s", message.count, message.path)
		}
		return model, nil

	case confirmRequestMsg:
		request := message.request
		model.pending = &request
		model.returnMode = model.mode
		model.mode = modeConfirm
		return model, nil

	case tea.KeyMsg:
		if key.Matches(message, model.keys.ForceQuit) {
			return model, tea.Quit
		}
		switch model.mode {
		case modeConfirm:
			return model.handleConfirmKeys(message)
		case modeAdd, modeEdit:
			return model.handleFormKeys(message)
		default:
			return model.handleBrowseKeys(message)
		}
	}

	// Cursor blink and other input internals.
	if model.mode == modeAdd || model.mode == modeEdit {
		var command tea.Cmd
		model.inputs[model.focus], command = model.inputs[model.focus].Update(message)
		return model, command
	}
	return model, nil
}

func (model Model) handleBrowseKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	state := model.controller.Snapshot()
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.Up):
		if model.cursor > 0 {
			model.cursor--
		}

	case key.Matches(message, model.keys.Down):
		if model.cursor < len(state.Users)-1 {
			model.cursor++
		}

	case key.Matches(message, model.keys.Add):
		model.mode = modeAdd
		model.status = ""
		return model, model.openForm(state.NewDraft)

	case key.Matches(message, model.keys.Edit):
		user, ok := model.selected(state)
		if !ok {
			return model, nil
		}
		if err := model.controller.StartEdit(user.ID); err != nil {
			model.status = err.Error()
			return model, nil
		}
		model.mode = modeEdit
		model.status = ""
		return model, model.openForm(model.controller.Snapshot().EditDraft)

	case key.Matches(message, model.keys.Delete):
		user, ok := model.selected(state)
		if !ok {
			return model, nil
		}
		return model, model.deleteCmd(user.ID)

	case key.Matches(message, model.keys.Reload):
		return model, model.loadCmd()

	case key.Matches(message, model.keys.Export):
		return model, exportCmd(model.exportPath, state.Users)
	}
	return model, nil
}

func (model Model) handleFormKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Cancel):
		if model.mode == modeEdit {
			model.controller.Cancel()
		}
		model.closeForm()
		return model, nil

	case key.Matches(message, model.keys.Submit):
		return model, model.submitCmd(model.mode)

	case key.Matches(message, model.keys.NextField):
		return model, model.focusField((model.focus + 1) % fieldCount)

	case key.Matches(message, model.keys.PrevField):
		return model, model.focusField((model.focus + fieldCount - 1) % fieldCount)
	}

	var command tea.Cmd
	model.inputs[model.focus], command = model.inputs[model.focus].Update(message)
	model.pushDraft()
	return model, command
}

func (model Model) handleConfirmKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	var answer bool
	switch {
	case key.Matches(message, model.keys.Yes):
		answer = true
	case key.Matches(message, model.keys.No):
		answer = false
	default:
		return model, nil
	}

	if model.pending != nil {
		model.pending.reply <- answer
	}
	model.pending = nil
	model.mode = model.returnMode
	return model, listenForConfirm(model.prompts)
}

// handleSubmitted closes the form that sent the draft once the controller
// has accepted it. On failure the form stays open; validation messages are
// shown from the controller state. A reply for a form that has since been
// closed leaves the screen alone.
func (model Model) handleSubmitted(message submittedMsg) Model {
	if message.err != nil || message.form != model.mode {
		return model
	}
	state := model.controller.Snapshot()
	switch message.form {
	case modeAdd:
		model.closeForm()
		model.cursor = len(state.Users) - 1
	case modeEdit:
		if state.EditID == "" {
			model.closeForm()
		}
	}
	model.clampCursor()
	return model
}

// --- Form helpers ---

func (model *Model) openForm(draft models.Draft) tea.Cmd {
	model.inputs[fieldFullName].SetValue(draft.FullName)
	model.inputs[fieldStudentID].SetValue(draft.StudentID)
	model.inputs[fieldClassName].SetValue(draft.ClassName)
	return model.focusField(fieldFullName)
}

func (model *Model) closeForm() {
	for i := range model.inputs {
		model.inputs[i].Blur()
	}
	model.mode = modeBrowse
}

func (model *Model) focusField(field int) tea.Cmd {
	model.inputs[model.focus].Blur()
	model.focus = field
	return model.inputs[field].Focus()
}

func (model Model) draft() models.Draft {
	return models.Draft{
		FullName:  model.inputs[fieldFullName].Value(),
		StudentID: model.inputs[fieldStudentID].Value(),
		ClassName: model.inputs[fieldClassName].Value(),
	}
}

// pushDraft copies the form inputs into the controller.
func (model Model) pushDraft() {
	switch model.mode {
	case modeAdd:
		model.controller.SetNewDraft(model.draft())
	case modeEdit:
		model.controller.SetEditDraft(model.draft())
	}
}

func (model Model) selected(state screen.State) (models.User, bool) {
	if model.cursor < 0 || model.cursor >= len(state.Users) {
		return models.User{}, false
	}
	return state.Users[model.cursor], true
}

func (model *Model) clampCursor() {
	n := len(model.controller.Snapshot().Users)
	if model.cursor >= n {
		model.cursor = n - 1
	}
	if model.cursor < 0 {
		model.cursor = 0
	}
}

// --- Commands ---

func (model Model) loadCmd() tea.Cmd {
	controller, ctx := model.controller, model.ctx
	return func() tea.Msg {
		return loadedMsg{err: controller.Load(ctx)}
	}
}

func (model Model) submitCmd(m mode) tea.Cmd {
	controller, ctx := model.controller, model.ctx
	return func() tea.Msg {
		if m == modeEdit {
			return submittedMsg{err: controller.Save(ctx), form: m}
		}
		return submittedMsg{err: controller.Add(ctx), form: m}
	}
}

func (model Model) deleteCmd(id string) tea.Cmd {
	controller, ctx := model.controller, model.ctx
	return func() tea.Msg {
		return deletedMsg{err: controller.Delete(ctx, id)}
	}
}

func exportCmd(path string, users []models.User) tea.Cmd {
	return func() tea.Msg {
		err := sheet.ExportFile(path, users)
		return exportedMsg{path: path, count: len(users), err: err}
	}
}
