package perfil

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CriarPerfilDTO struct {
	Email  string `json:"email" validate:"required,email"`
	Nome   string `json:"nome" validate:"max=255"`
	Papel  string `json:"papel" validate:"required,oneof=admin manager user"`
	Avatar string `json:"avatar"`
	Senha  string `json:"senha" validate:"omitempty,min=8"`
}

type AlterarPapelDTO struct {
	Papel string `json:"papel" validate:"required,oneof=admin manager user"`
}
