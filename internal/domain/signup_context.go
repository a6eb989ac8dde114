package domain

import (
	"errors"
)

var (
	// ErrInvalidContextData is returned when session context data is invalid
	ErrInvalidContextData = errors.New("invalid context data")
)

// SignupContext holds the data collected during the signup conversation.
// It is persisted between messages as a JSON map keyed by the participant,
// so every field must survive a map round-trip.
type SignupContext struct {
	ChatID     int64  `json:"chat_id"`
	Username   string `json:"username"`
	Nome       string `json:"nome"`
	Telefone   string `json:"telefone"`
	CPF        string `json:"cpf"`
	Email      string `json:"email"`
	ReferredBy string `json:"referred_by"`
}

// ToMap converts SignupContext to a map for JSON serialization
func (c *SignupContext) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"chat_id":     c.ChatID,
		"username":    c.Username,
		"nome":        c.Nome,
		"telefone":    c.Telefone,
		"cpf":         c.CPF,
		"email":       c.Email,
		"referred_by": c.ReferredBy,
	}
}

// FromMap populates SignupContext from a map after JSON deserialization
func (c *SignupContext) FromMap(data map[string]interface{}) error {
	if data == nil {
		return ErrInvalidContextData
	}

	c.ChatID = mapInt64(data, "chat_id")
	c.Username = mapString(data, "username")
	c.Nome = mapString(data, "nome")
	c.Telefone = mapString(data, "telefone")
	c.CPF = mapString(data, "cpf")
	c.Email = mapString(data, "email")
	c.ReferredBy = mapString(data, "referred_by")

	return nil
}

func mapString(data map[string]interface{}, key string) string {
	if s, ok := data[key].(string); ok {
		return s
	}
	return ""
}

// mapInt64 handles the float64 that encoding/json produces for numbers as
// well as native integer values written before serialization
func mapInt64(data map[string]interface{}, key string) int64 {
	switch v := data[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}
