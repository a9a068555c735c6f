package gateway

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validar checa as tags `validate` de um DTO antes de qualquer escrita
func Validar(colecao, op string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return NovoErroValidacao(colecao, op, err.Error())
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, mensagemCampo(fe))
	}
	return NovoErroValidacao(colecao, op, strings.Join(msgs, "; "))
}

func mensagemCampo(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s é obrigatório", fe.Field())
	case "email":
		return fmt.Sprintf("%s não é um e-mail válido", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s deve ser um de [%s]", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s excede o tamanho máximo %s", fe.Field(), fe.Param())
	case "gt", "gte", "min":
		return fmt.Sprintf("%s deve ser %s %s", fe.Field(), fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("%s inválido (%s)", fe.Field(), fe.Tag())
	}
}
