package admin

type CreateUserRequest struct {
	Username     string `json:"username" validate:"required,min=2,max=64"`
	Password     string `json:"password" validate:"required,min=6,max=72"`
	Role         string `json:"role" validate:"required,oneof=admin teacher student"`
	Organization string `json:"organization" validate:"omitempty,max=120"`
	IDNumber     string `json:"id_number" validate:"omitempty,max=64"`
}

// UpdateUserRequest leaves the password unchanged when it is empty.
type UpdateUserRequest struct {
	Username string `json:"username" validate:"required,min=2,max=64"`
	Password string `json:"password" validate:"omitempty,min=6,max=72"`
	Role     string `json:"role" validate:"required,oneof=admin teacher student"`
}
