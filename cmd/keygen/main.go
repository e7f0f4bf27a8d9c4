// Command keygen prints a new API key and the bcrypt hash to put in
// SERVICE_API_KEY_HASH or ADMIN_API_KEY_HASH.
//
//	keygen            generate a key and its hash
//	keygen <key>      hash an existing key
package main

import (
	"fmt"
	"os"

	internaljwt "legal-relay-backend/internal/jwt"
	"legal-relay-backend/internal/logger"
	"legal-relay-backend/utils"
)

func main() {
	log := logger.New("keygen")

	key := utils.GenerateAPIKey()
	if len(os.Args) > 1 {
		key = os.Args[1]
	}

	hash, err := internaljwt.HashAPIKey(key)
	if err != nil {
		log.Fatalf("hash key: %v", err)
	}

	fmt.Printf("key:  %s\nhash: %s\n", key, hash)
}
