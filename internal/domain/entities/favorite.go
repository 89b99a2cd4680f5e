package entities

import "time"

// FavoriteRecord es la copia local de un favorito persistido en el store remoto
type FavoriteRecord struct {
	RemoteID  string    `json:"id"`
	CoinID    string    `json:"coinId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChangeAction tipo de cambio emitido por el notificador
type ChangeAction string

const (
	ChangeAdd    ChangeAction = "add"
	ChangeRemove ChangeAction = "remove"
	ChangeClear  ChangeAction = "clear"
)

// FavoriteChange se publica tras cada mutación exitosa. CoinID va vacío en clear.
type FavoriteChange struct {
	Action ChangeAction `json:"action"`
	CoinID string       `json:"coinId,omitempty"`
	At     time.Time    `json:"at"`
}
