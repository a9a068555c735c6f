package gateway

import "net/http"

// StatusHTTP traduz o tipo da falha para o status da resposta
func StatusHTTP(err error) int {
	switch TipoDe(err) {
	case ErroValidacao:
		return http.StatusBadRequest
	case ErroConflito:
		return http.StatusConflict
	case ErroNaoEncontrado:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
