package telegram

import (
	"fmt"
	"strings"
)

const (
	placeholderUnset   = "Не указано"
	placeholderComment = "Нет комментария"
)

// RetouchRequest is a customer's request to retouch an uploaded photo.
type RetouchRequest struct {
	PhotoURL string `json:"photo_url"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Comment  string `json:"comment"`
}

// WithDefaults fills blank contact fields with placeholder text.
func (r RetouchRequest) WithDefaults() RetouchRequest {
	r.PhotoURL = strings.TrimSpace(r.PhotoURL)
	r.Name = orDefault(r.Name, placeholderUnset)
	r.Phone = orDefault(r.Phone, placeholderUnset)
	r.Comment = orDefault(r.Comment, placeholderComment)
	return r
}

// Caption renders the message posted to the channel.
func (r RetouchRequest) Caption() string {
	return fmt.Sprintf("🖼 Новая заявка на ретушь\n\n👤 Имя: %s\n📞 Телефон: %s\n💬 Комментарий: %s",
		r.Name, r.Phone, r.Comment)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
