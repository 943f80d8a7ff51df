// Command issuetoken prints a signed identity token for local development.
//
//	TOKEN_SECRET=... issuetoken -username ranger [-id UUID] [-ttl 720h]
//
// Send the token as "Authorization: Bearer <token>" or store it in the
// "token" cookie to browse the site as that user.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pkordes/yelp-camp/internal/auth"
	"github.com/pkordes/yelp-camp/internal/domain"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	username := flag.String("username", "", "username the token identifies (required)")
	id := flag.String("id", "", "user id; a new random uuid when empty")
	ttl := flag.Duration("ttl", 720*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()

	user, err := parseUser(*username, *id)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid arguments")
	}

	secret := os.Getenv("TOKEN_SECRET")
	if secret == "" {
		log.Fatal().Msg("TOKEN_SECRET is not set")
	}

	token, err := auth.NewIssuer(secret).Issue(user, *ttl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to issue token")
	}

	log.Info().Str("user_id", user.ID.String()).Str("username", user.Username).Dur("ttl", *ttl).Msg("token issued")
	fmt.Println(token)
}

func parseUser(username, id string) (domain.User, error) {
	if username == "" {
		return domain.User{}, fmt.Errorf("-username is required")
	}
	if id == "" {
		return domain.User{ID: uuid.New(), Username: username}, nil
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return domain.User{}, fmt.Errorf("-id: %w", err)
	}
	return domain.User{ID: parsed, Username: username}, nil
}
