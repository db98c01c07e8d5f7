package request

// Identity is the verified caller as reported by the identity provider.
type Identity struct {
	SubjectID string `validate:"required"`
	Email     string `validate:"required,email"`
	Name      string
}

type SyncProfileRequest struct {
	Name string `json:"name" validate:"omitempty,max=100"`
}
