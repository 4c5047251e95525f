package main

import (
	"fmt"
	"time"

	"github.com/portico-hosting/portico/internal/auth"
)

func main() {
	// Use the jwt secret from config.yaml
	secret := "change-me-in-production"
	nodeID := "node:local"
	expiration := 8760 * time.Hour // 1 year

	token, err := auth.GenerateAgentToken(secret, nodeID, expiration)
	if err != nil {
		panic(err)
	}

	fmt.Println(token)
}
