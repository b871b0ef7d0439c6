package models

// User is one record of the remote users collection.
type User struct {
	ID        string `json:"id"`        // Assigned by the collection, never locally
	FullName  string `json:"fullName"`  // Display name
	StudentID string `json:"studentId"` // Student number, at least 10 characters
	ClassName string `json:"className"` // Class the student belongs to
}

// Draft holds the editable fields of a user before they are submitted.
// It is also the request body for create and update calls.
type Draft struct {
	FullName  string `json:"fullName" binding:"required"`
	StudentID string `json:"studentId" binding:"required"`
	ClassName string `json:"className" binding:"required"`
}

// DraftOf copies the editable fields of u into a Draft.
func DraftOf(u User) Draft {
	return Draft{
		FullName:  u.FullName,
		StudentID: u.StudentID,
		ClassName: u.ClassName,
	}
}

// WithID turns the draft into a User carrying the given id.
func (d Draft) WithID(id string) User {
	return User{
		ID:        id,
		FullName:  d.FullName,
		StudentID: d.StudentID,
		ClassName: d.ClassName,
	}
}
