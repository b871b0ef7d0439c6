package screen

import "rollcall-users/models"

// State is a snapshot of the screen. A State is never modified after it
// has been published by the Controller; every action builds a new one.
type State struct {
	Users     []models.User
	NewDraft  models.Draft
	EditID    string // "" when no row is being edited
	EditDraft models.Draft
	Error     string // shared validation message, "" when none
}

// Editing reports whether the row with the given id is in edit mode.
func (s State) Editing(id string) bool {
	return s.EditID != "" && s.EditID == id
}

// Find returns the stored user with the given id.
func (s State) Find(id string) (models.User, bool) {
	for _, u := range s.Users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

func (s State) withUsers(users []models.User) State {
	s.Users = users
	return s
}

func (s State) withAppended(u models.User) State {
	users := make([]models.User, 0, len(s.Users)+1)
	users = append(users, s.Users...)
	s.Users = append(users, u)
	return s
}

// withReplaced swaps the record stored under id for u.
func (s State) withReplaced(id string, u models.User) State {
	users := make([]models.User, len(s.Users))
	for i, existing := range s.Users {
		if existing.ID == id {
			users[i] = u
		} else {
			users[i] = existing
		}
	}
	s.Users = users
	return s
}

func (s State) withRemoved(id string) State {
	users := make([]models.User, 0, len(s.Users))
	for _, u := range s.Users {
		if u.ID != id {
			users = append(users, u)
		}
	}
	s.Users = users
	return s
}

func (s State) viewing() State {
	s.EditID = ""
	s.EditDraft = models.Draft{}
	return s
}
