package domain

// ErrorResponse é a estrutura padronizada das respostas de erro da API.
type ErrorResponse struct {
	Code     int    `json:"code" example:"400"`
	Category string `json:"category" example:"VALIDATION_ERROR"`
	Message  string `json:"message" example:"É necessário informar o nome do produto."`
}
