package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// EventID: obrigatório para subscribe/unsubscribe
type ClientMsg struct {
	Type    string `json:"type"`
	EventID string `json:"eventId"`
}

// EventUpdate é o payload enviado aos clientes inscritos quando o poller
// publica uma atualização do evento
type EventUpdate struct {
	EventID string      `json:"eventId"`
	Payload interface{} `json:"payload"`
}
