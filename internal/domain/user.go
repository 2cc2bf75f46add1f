package domain

// Profile — публичная часть пользователя для обогащения сообщений.
type Profile struct {
	ID     string  `db:"id" json:"id"`
	Name   string  `db:"name" json:"name"`
	Avatar *string `db:"avatar" json:"avatar,omitempty"`
}
