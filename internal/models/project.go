package models

import "time"

// Project — клиент сервиса (tenant). Идентифицируется по api_key.
type Project struct {
	ID           int64     `json:"id"`
	APIKey       string    `json:"api_key"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	MailUsername string    `json:"mail_username,omitempty"`
	MailPassword string    `json:"-"` // не отдаём наружу
	CreatedAt    time.Time `json:"created_at"`
}

// HasMailCredentials — проект шлёт письма от своего ящика только когда
// заданы и логин, и пароль.
func (p *Project) HasMailCredentials() bool {
	return p != nil && p.MailUsername != "" && p.MailPassword != ""
}
