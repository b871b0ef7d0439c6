package tui

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollcall-users/models"
	"rollcall-users/screen"
	"rollcall-users/validation"
)

// memoryRemote is an in-memory users collection that records requests.
type memoryRemote struct {
	mu     sync.Mutex
	users  []models.User
	nextID int
	calls  []string
	puts   []models.Draft
}

func (r *memoryRemote) List(ctx context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "GET")
	return append([]models.User(nil), r.users...), nil
}

func (r *memoryRemote) Create(ctx context.Context, d models.Draft) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "POST")
	r.nextID++
	u := d.WithID(strconv.Itoa(100 + r.nextID))
	r.users = append(r.users, u)
	return u, nil
}

func (r *memoryRemote) Update(ctx context.Context, id string, d models.Draft) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "PUT /"+id)
	r.puts = append(r.puts, d)
	u := d.WithID(id)
	for i := range r.users {
		if r.users[i].ID == id {
			r.users[i] = u
		}
	}
	return u, nil
}

func (r *memoryRemote) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "DELETE /"+id)
	return nil
}

func (r *memoryRemote) requests() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

var bob = models.User{ID: "2", FullName: "Bob", StudentID: "ST00000000", ClassName: "9B"}
var carol = models.User{ID: "3", FullName: "Carol", StudentID: "ST11111111", ClassName: "11C"}

// testModel builds a loaded model over the given users.
func testModel(t *testing.T, confirm screen.Confirmer, users ...models.User) (Model, *screen.Controller, *memoryRemote) {
	t.Helper()
	remote := &memoryRemote{users: users}
	controller := screen.NewController(remote, confirm)

	model := NewModel(context.Background(), controller, nil, filepath.Join(t.TempDir(), "users.xlsx"))
	model = run(t, model, model.loadCmd())
	remote.calls = nil
	return model, controller, remote
}

func always(answer bool) screen.ConfirmFunc {
	return func(ctx context.Context, prompt string) bool { return answer }
}

func update(t *testing.T, model Model, message tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, command := model.Update(message)
	updated, ok := next.(Model)
	require.True(t, ok, "Update returned %T", next)
	return updated, command
}

// run executes command and feeds its message back into the model.
func run(t *testing.T, model Model, command tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, command)
	model, _ = update(t, model, command())
	return model
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeDraft(t *testing.T, model Model, fields ...string) Model {
	t.Helper()
	for i, value := range fields {
		if i > 0 {
			model, _ = update(t, model, tea.KeyMsg{Type: tea.KeyTab})
		}
		if value != "" {
			model, _ = update(t, model, runes(value))
		}
	}
	return model
}

func TestModelView(t *testing.T) {
	model, _, _ := testModel(t, always(true), bob, carol)

	view := model.View()
	assert.Contains(t, view, "Users")
	assert.Contains(t, view, "Bob")
	assert.Contains(t, view, "ST11111111")
	assert.Contains(t, view, "11C")
}

func TestModelEmptyState(t *testing.T) {
	model, _, _ := testModel(t, always(true))

	assert.Contains(t, model.View(), "No users.")
}

func TestModelQuit(t *testing.T) {
	model, _, _ := testModel(t, always(true))

	_, command := update(t, model, runes("q"))
	require.NotNil(t, command)
	_, isQuit := command().(tea.QuitMsg)
	assert.True(t, isQuit)
}

func TestModelNavigation(t *testing.T) {
	model, _, _ := testModel(t, always(true), bob, carol)

	model, _ = update(t, model, runes("j"))
	assert.Equal(t, 1, model.cursor)
	model, _ = update(t, model, runes("j"))
	assert.Equal(t, 1, model.cursor, "cursor stops at the last row")
	model, _ = update(t, model, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, model.cursor)
}

func TestModelAddUser(t *testing.T) {
	model, controller, remote := testModel(t, always(true))

	model, _ = update(t, model, runes("a"))
	require.Equal(t, modeAdd, model.mode)

	model = typeDraft(t, model, "Ann Lee", "ST12345678", "10A")
	assert.Equal(t, models.Draft{FullName: "Ann Lee", StudentID: "ST12345678", ClassName: "10A"}, controller.Snapshot().NewDraft)

	_, command := update(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	model = run(t, model, command)

	state := controller.Snapshot()
	assert.Equal(t, []string{"POST"}, remote.requests())
	require.Len(t, state.Users, 1)
	assert.Equal(t, "Ann Lee", state.Users[0].FullName)
	assert.Equal(t, models.Draft{}, state.NewDraft)
	assert.Equal(t, modeBrowse, model.mode)
	assert.Contains(t, model.View(), "Ann Lee")
}

func TestModelAddUser_ValidationMessage(t *testing.T) {
	model, controller, remote := testModel(t, always(true))

	model, _ = update(t, model, runes("a"))
	model = typeDraft(t, model, "Ann Lee", "ST1", "10A")

	_, command := update(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	model = run(t, model, command)

	assert.Empty(t, remote.requests())
	assert.Empty(t, controller.Snapshot().Users)
	assert.Equal(t, modeAdd, model.mode, "form stays open for correction")
	assert.Contains(t, model.View(), validation.MsgStudentIDTooShort)
}

func TestModelEditCancel(t *testing.T) {
	model, controller, remote := testModel(t, always(true), bob, carol)

	model, _ = update(t, model, runes("j"))
	model, _ = update(t, model, runes("e"))
	require.Equal(t, modeEdit, model.mode)
	assert.True(t, controller.Snapshot().Editing("3"))

	model, _ = update(t, model, runes(" changed"))
	assert.Equal(t, "Carol changed", controller.Snapshot().EditDraft.FullName)

	model, _ = update(t, model, tea.KeyMsg{Type: tea.KeyEsc})
	state := controller.Snapshot()
	assert.Equal(t, modeBrowse, model.mode)
	assert.Empty(t, state.EditID)
	assert.Equal(t, []models.User{bob, carol}, state.Users)
	assert.Empty(t, remote.requests())
}

func TestModelEditSave(t *testing.T) {
	model, controller, remote := testModel(t, always(true), bob, carol)

	model, _ = update(t, model, runes("e"))
	model, _ = update(t, model, runes(" Stone"))

	_, command := update(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	model = run(t, model, command)

	state := controller.Snapshot()
	assert.Equal(t, []string{"PUT /2"}, remote.requests())
	assert.Equal(t, "Bob Stone", state.Users[0].FullName)
	assert.Empty(t, state.EditID)
	assert.Equal(t, modeBrowse, model.mode)
}

func TestModelEditKeepsLongValues(t *testing.T) {
	long := models.User{ID: "7", FullName: strings.Repeat("N", 80), StudentID: "ST22222222", ClassName: "12D"}
	model, controller, remote := testModel(t, always(true), long)

	model, _ = update(t, model, runes("e"))
	require.Equal(t, modeEdit, model.mode)
	model = typeDraft(t, model, "", "", "X")

	_, command := update(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	model = run(t, model, command)

	require.Equal(t, []string{"PUT /7"}, remote.requests())
	sent := remote.puts[0]
	assert.Equal(t, long.FullName, sent.FullName)
	assert.Equal(t, "12DX", sent.ClassName)
	assert.Len(t, controller.Snapshot().Users[0].FullName, 80)
	assert.Equal(t, modeBrowse, model.mode)
}

func TestModelSaveReplyAfterSwitchingToAdd(t *testing.T) {
	model, controller, _ := testModel(t, always(true), bob, carol)

	model, _ = update(t, model, runes("e"))
	model, save := update(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, save)

	model, _ = update(t, model, tea.KeyMsg{Type: tea.KeyEsc})
	model, _ = update(t, model, runes("a"))
	model = typeDraft(t, model, "Dan")

	model = run(t, model, save)

	assert.Equal(t, modeAdd, model.mode, "the add form stays open")
	assert.Equal(t, 0, model.cursor)
	assert.Equal(t, "Dan", controller.Snapshot().NewDraft.FullName)
	assert.Equal(t, "Dan", model.inputs[fieldFullName].Value())
}

func TestModelReloadClosesEditOfRemovedUser(t *testing.T) {
	model, controller, remote := testModel(t, always(true), bob, carol)

	model, _ = update(t, model, runes("j"))
	model, _ = update(t, model, runes("e"))
	require.Equal(t, modeEdit, model.mode)

	remote.mu.Lock()
	remote.users = []models.User{bob}
	remote.mu.Unlock()
	model = run(t, model, model.loadCmd())

	assert.Equal(t, modeBrowse, model.mode)
	assert.Empty(t, controller.Snapshot().EditID)
	assert.Equal(t, 0, model.cursor)
}

func TestModelDelete(t *testing.T) {
	t.Run("denied", func(t *testing.T) {
		model, controller, remote := testModel(t, always(false), bob, carol)

		_, command := update(t, model, runes("d"))
		run(t, model, command)

		assert.Empty(t, remote.requests())
		assert.Equal(t, []models.User{bob, carol}, controller.Snapshot().Users)
	})

	t.Run("confirmed", func(t *testing.T) {
		model, controller, remote := testModel(t, always(true), bob, carol)

		_, command := update(t, model, runes("d"))
		run(t, model, command)

		assert.Equal(t, []string{"DELETE /2"}, remote.requests())
		assert.Equal(t, []models.User{carol}, controller.Snapshot().Users)
	})
}

func TestModelDeletePrompt(t *testing.T) {
	remote := &memoryRemote{users: []models.User{bob, carol}}
	prompts := NewPromptConfirmer()
	controller := screen.NewController(remote, prompts)
	require.NoError(t, controller.Load(context.Background()))

	model := NewModel(context.Background(), controller, prompts, "")

	_, command := update(t, model, runes("d"))
	require.NotNil(t, command)
	done := make(chan tea.Msg, 1)
	go func() { done <- command() }()

	// The delete command blocks on the question until it is answered.
	model, _ = update(t, model, listenForConfirm(prompts)())
	require.Equal(t, modeConfirm, model.mode)
	assert.Contains(t, model.View(), screen.DeletePrompt)

	model, next := update(t, model, runes("y"))
	assert.Equal(t, modeBrowse, model.mode)
	assert.NotNil(t, next, "listening resumes after an answer")

	model, _ = update(t, model, <-done)
	assert.Equal(t, []models.User{carol}, controller.Snapshot().Users)
	assert.Equal(t, 0, model.cursor)
}

func TestPromptConfirmer_CancelledContext(t *testing.T) {
	prompts := NewPromptConfirmer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, prompts.Confirm(ctx, "sure?"))
}

func TestModelExport(t *testing.T) {
	model, _, _ := testModel(t, always(true), bob, carol)

	_, command := update(t, model, runes("x"))
	model = run(t, model, command)

	_, err := os.Stat(model.exportPath)
	require.NoError(t, err)
	assert.Contains(t, model.View(), "exported 2 users")
}
