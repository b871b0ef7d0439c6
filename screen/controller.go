// Package screen holds the state of the users screen and keeps it in step
// with the remote users collection.
//
// Each action validates its input where needed, issues at most one request
// and, on success, publishes a new State snapshot. Failed requests are
// logged and leave the snapshot as it was.
package screen

import (
	"context"
	"errors"
	"log"
	"sync"

	"rollcall-users/models"
	"rollcall-users/validation"
)

// DeletePrompt is the question asked before a user is deleted.
const DeletePrompt = "Are you sure you want to delete this user?"

// ErrUnknownUser is returned by StartEdit for an id that is not loaded.
var ErrUnknownUser = errors.New("user not found in the current list")

// Remote is the users collection the screen mirrors.
type Remote interface {
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, d models.Draft) (models.User, error)
	Update(ctx context.Context, id string, d models.Draft) (models.User, error)
	Delete(ctx context.Context, id string) error
}

// Confirmer answers yes/no questions put to the person using the screen.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// Controller owns the screen State.
type Controller struct {
	remote  Remote
	confirm Confirmer
	logger  *log.Logger

	mu    sync.Mutex
	state State
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger failed requests are written to.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// NewController creates a controller with an empty user list.
func NewController(remote Remote, confirm Confirmer, opts ...Option) *Controller {
	c := &Controller{
		remote:  remote,
		confirm: confirm,
		logger:  log.Default(),
		state:   State{Users: []models.User{}},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// update publishes fn applied to the latest snapshot.
func (c *Controller) update(fn func(State) State) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = fn(c.state)
	return c.state
}

// --- Loading ---

// Load replaces the user list with the collection's current contents.
// An edit of a user that is no longer listed is abandoned.
func (c *Controller) Load(ctx context.Context) error {
	users, err := c.remote.List(ctx)
	if err != nil {
		c.logger.Printf("Error fetching users: %v", err)
		return err
	}
	c.update(func(s State) State {
		s = s.withUsers(users)
		if _, ok := s.Find(s.EditID); s.EditID != "" && !ok {
			s = s.viewing()
		}
		return s
	})
	return nil
}

// --- Form state ---

// SetNewDraft replaces the contents of the add form.
func (c *Controller) SetNewDraft(d models.Draft) {
	c.update(func(s State) State {
		s.NewDraft = d
		return s
	})
}

// SetEditDraft replaces the contents of the row being edited.
func (c *Controller) SetEditDraft(d models.Draft) {
	c.update(func(s State) State {
		s.EditDraft = d
		return s
	})
}

// StartEdit puts the row with the given id in edit mode, seeding the edit
// draft from the stored record. If another row is already being edited,
// its unsaved draft is dropped and the edit moves to id.
func (c *Controller) StartEdit(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	u, ok := c.state.Find(id)
	if !ok {
		return ErrUnknownUser
	}
	s := c.state
	s.EditID = id
	s.EditDraft = models.DraftOf(u)
	c.state = s
	return nil
}

// Cancel leaves edit mode without sending anything.
func (c *Controller) Cancel() {
	c.update(State.viewing)
}

// check validates d and records the outcome in the shared error slot.
func (c *Controller) check(d models.Draft) error {
	err := validation.Validate(d)
	c.update(func(s State) State {
		if err != nil {
			s.Error = err.Error()
		} else {
			s.Error = ""
		}
		return s
	})
	return err
}

// --- Mutations ---

// Add validates the new-user draft and posts it. On success the returned
// record is appended and the form is reset.
func (c *Controller) Add(ctx context.Context) error {
	draft := c.Snapshot().NewDraft
	if err := c.check(draft); err != nil {
		return err
	}

	created, err := c.remote.Create(ctx, draft)
	if err != nil {
		c.logger.Printf("Error adding user: %v", err)
		return err
	}
	c.update(func(s State) State {
		s = s.withAppended(created)
		s.NewDraft = models.Draft{}
		return s
	})
	return nil
}

// Save validates the edit draft and puts it to the edited record. On
// success the stored record is replaced by the server's copy and the row
// leaves edit mode.
func (c *Controller) Save(ctx context.Context) error {
	s := c.Snapshot()
	if s.EditID == "" {
		return nil
	}
	id, draft := s.EditID, s.EditDraft
	if err := c.check(draft); err != nil {
		return err
	}

	updated, err := c.remote.Update(ctx, id, draft)
	if err != nil {
		c.logger.Printf("Error updating user %s: %v", id, err)
		return err
	}
	c.update(func(s State) State {
		s = s.withReplaced(id, updated)
		if s.EditID == id {
			s = s.viewing()
		}
		return s
	})
	return nil
}

// Delete asks for confirmation and then deletes the user with the given
// id. Nothing is sent when the confirmation is refused.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if !c.confirm.Confirm(ctx, DeletePrompt) {
		return nil
	}

	if err := c.remote.Delete(ctx, id); err != nil {
		c.logger.Printf("Error deleting user %s: %v", id, err)
		return err
	}
	c.update(func(s State) State {
		s = s.withRemoved(id)
		if s.EditID == id {
			s = s.viewing()
		}
		return s
	})
	return nil
}
