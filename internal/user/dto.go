package user

// RegisterUserRequest is posted by the identity provider's sign-up hook.
// ID is the provider-issued user UUID.
type RegisterUserRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserResponse represents the response for a user.
type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// RegisterResponse is returned after registration, including the groups the
// user was added to through pending invitations.
type RegisterResponse struct {
	User         *UserResponse `json:"user"`
	GroupsJoined []string      `json:"groups_joined"`
}

// ToResponse converts a User model to a UserResponse DTO.
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
