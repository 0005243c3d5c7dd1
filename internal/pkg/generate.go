package pkg

import "github.com/google/uuid"

// GenerateGameID - opaque session identifier shared between players.
func GenerateGameID() string {
	return uuid.NewString()
}

// GenerateIdentityToken - server-issued token binding a connection to its
// player slot; the client echoes it back on rejoin.
func GenerateIdentityToken() string {
	return uuid.NewString()
}
