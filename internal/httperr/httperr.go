package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code     string `json:"error_code"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

// Abort writes the error and stops the middleware chain.
func Abort(c *gin.Context, status int, code, message, redirect string) {
	c.AbortWithStatusJSON(status, HTTPError{
		Code:     code,
		Message:  message,
		Redirect: redirect,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func TooManyRequests(c *gin.Context) {
	Abort(c, http.StatusTooManyRequests, "too_many_requests", "Muitas tentativas. Aguarde um instante.", "")
}

var businessMessages = map[string]struct {
	status  int
	message string
}{
	"missing_fields":        {http.StatusBadRequest, "Por favor, preencha todos os campos do agendamento."},
	"invalid_day":           {http.StatusBadRequest, "Dia inválido para o mês atual."},
	"invalid_time":          {http.StatusBadRequest, "Horário indisponível."},
	"service_not_found":     {http.StatusBadRequest, "Serviço não encontrado."},
	"barber_not_found":      {http.StatusBadRequest, "Profissional não encontrado."},
	"appointment_not_found": {http.StatusNotFound, "Agendamento não encontrado."},
	"invalid_state":         {http.StatusBadRequest, "Agendamento não pode ser alterado."},
	"invalid_status":        {http.StatusBadRequest, "Status inválido."},
	"invalid_transition":    {http.StatusConflict, "Transição de acesso inválida."},
	"user_not_found":        {http.StatusNotFound, "Usuário não encontrado."},
	"automation_not_found":  {http.StatusNotFound, "Automação não encontrada."},
	"password_mismatch":     {http.StatusBadRequest, "As senhas não coincidem."},
	"email_already_exists":  {http.StatusBadRequest, "E-mail já cadastrado."},
	"invalid_credentials":   {http.StatusUnauthorized, "E-mail ou senha inválidos."},
	"invalid_code":          {http.StatusUnauthorized, "Código inválido ou expirado."},
	"unsupported_image":     {http.StatusBadRequest, "Formato de imagem não suportado."},
	"image_too_large":       {http.StatusBadRequest, "Imagem maior que 5 MB ou 4096x4096."},
	"invalid_request_id":    {http.StatusBadRequest, "Identificador de requisição inválido."},
	"request_id_conflict":   {http.StatusConflict, "Identificador de requisição já usado em outro agendamento."},
	"automation_disabled":   {http.StatusConflict, "Automação desativada."},
	"demo_read_only":        {http.StatusForbidden, "Modo demonstração não salva alterações."},
}

// FromError maps business errors to their HTTP response; anything else is a 500.
func FromError(c *gin.Context, err error, fallbackCode, fallbackMessage string) {
	if code, ok := BusinessCode(err); ok {
		if m, known := businessMessages[code]; known {
			Write(c, m.status, code, m.message)
			return
		}
		BadRequest(c, code, code)
		return
	}
	Internal(c, fallbackCode, fallbackMessage)
}
