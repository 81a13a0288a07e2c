// One-off: go run scripts/genhash.go [password]
// Prints a salt and digest pair for seeding an admin user by hand, e.g.
//   INSERT INTO users (name, email, salt, encrypted_password, admin)
//   VALUES ('Admin', 'admin@example.com', '<salt>', '<digest>', TRUE);
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/sha3"
)

func main() {
	password := "admin"
	if len(os.Args) > 1 {
		password = os.Args[1]
	}
	salt := digest(time.Now().UTC().Format(time.RFC3339Nano), password)
	fmt.Printf("salt:               %s\n", salt)
	fmt.Printf("encrypted_password: %s\n", digest(salt, password))
}

func digest(a, b string) string {
	sum := sha3.Sum256([]byte(a + "--" + b))
	return hex.EncodeToString(sum[:])
}
