package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Image    string `json:"image,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// updateUserRequest is the allow-listed profile patch. Pointer fields
// distinguish "absent" from "set to empty"; anything outside this list in the
// request body is dropped on bind, so role and password hash cannot be
// injected through a generic PATCH.
type updateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,min=1"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Image    *string `json:"image"`
}

type changePasswordRequest struct {
	Password string `json:"password"`
}

// --- Response types ---

// authResponse echoes the account email and carries the freshly issued token.
type authResponse struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
}
