// Command token mints a short-lived access token for local testing of the
// reservation API. It signs with JWT_SECRET from the environment or .env.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/iliyamo/hotel-room-reservation/internal/utils"
)

func main() {
	sub := flag.Uint64("sub", 1, "user id (customer or room owner)")
	role := flag.String("role", "CUSTOMER", "CUSTOMER or OWNER")
	ttl := flag.Int("ttl", 60, "lifetime in minutes")
	flag.Parse()

	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is not set")
		os.Exit(1)
	}
	if *role != "CUSTOMER" && *role != "OWNER" {
		fmt.Fprintln(os.Stderr, "role must be CUSTOMER or OWNER")
		os.Exit(2)
	}

	tok, err := utils.NewAccessToken(secret, *sub, *role, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "sign token:", err)
		os.Exit(1)
	}
	fmt.Println(tok.Token)
}
