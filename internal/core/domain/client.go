package domain

// Client is a tenant whose books are reconciled. Owned by the client module; read-only here.
type Client struct {
	ClientID string `json:"clientID"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}
