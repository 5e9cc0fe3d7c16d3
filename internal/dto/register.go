package dto

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type RegisterResponse struct {
	UserID                    string `json:"userId"`
	RequiresEmailVerification bool   `json:"requiresEmailVerification"`
	Message                   string `json:"message"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required,max=128"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required,max=128"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=128"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
