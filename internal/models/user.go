package models

import "time"

// User — верифицируемый email. Уникальность email на уровне БД не
// гарантируется: при дублях везде берётся самая ранняя запись.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
