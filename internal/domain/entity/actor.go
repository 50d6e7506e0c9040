package entity

// Actor identifica a quien origina un movimiento (atribución).
type Actor struct {
	UserID   string
	UserName string
}
