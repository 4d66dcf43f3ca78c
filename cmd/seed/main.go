// Package main seeds a ModelShare store with demo users, models, rights and
// comment threads.
//
// Usage:
//
//	STORE_PATH=~/ModelShare/data/badger go run ./cmd/seed
//	go run ./cmd/seed --users 10 --models 25
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/modelshare/modelshare-server/internal/auth"
	"github.com/modelshare/modelshare-server/internal/config"
	"github.com/modelshare/modelshare-server/internal/domain"
	"github.com/modelshare/modelshare-server/internal/service"
	"github.com/modelshare/modelshare-server/internal/store"
	"github.com/modelshare/modelshare-server/internal/store/sqlite"
	"github.com/modelshare/modelshare-server/internal/validation"
)

var (
	userCount  = flag.Int("users", 5, "Number of demo users to create")
	modelCount = flag.Int("models", 12, "Number of demo models to create")
	password   = flag.String("password", "password123", "Password for every demo user")
)

var (
	adjectives = []string{"Low Poly", "Rigged", "Sculpted", "Voxel", "Retro", "Printable"}
	nouns      = []string{"Fox", "Castle", "Spaceship", "Teapot", "Robot", "Tree", "Dragon"}
	tagPool    = []string{"Low Poly", "Game Ready", "PBR", "3D Print", "Animated", "Sci-Fi", "Fantasy"}
	lines      = []string{
		"Love the topology on this one.",
		"Could you share the <b>texture</b> maps?",
		"Printed it at 0.2mm, came out great.",
		"The rig breaks a bit around the shoulders.",
		"Any chance of a lower poly version?",
	}
)

func main() {
	flag.Parse()

	cfg, err := config.Load(nil)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Printf("Opening %s store at: %s\n", cfg.Store.Driver, cfg.Store.Path)

	st, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	v := validation.New()
	events := service.NoopEmitter{}

	users := service.NewUserService(st, auth.NewPasswordHasher(cfg.Auth.BcryptCost), v, events, logger)
	models := service.NewModelService(st, nil, v, events, logger)
	rights := service.NewRightsService(st, events, logger)
	comments := service.NewCommentService(st, v, events, logger)

	ctx := context.Background()
	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))

	usernames := seedUsers(ctx, users)
	if len(usernames) == 0 {
		log.Fatal("No users available to seed with")
	}

	created := seedModels(ctx, models, usernames, rng)
	seedRights(ctx, rights, created, usernames, rng)
	seedComments(ctx, comments, created, usernames, rng)

	fmt.Println("\nDone! Log in with any demo user and password", *password)
}

func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.Store.Driver == config.DriverSQLite {
		return sqlite.Open(cfg.Store.Path, nil)
	}
	return store.New(cfg.Store.Path, nil)
}

func seedUsers(ctx context.Context, users *service.UserService) []string {
	var names []string
	for n := range *userCount {
		username := fmt.Sprintf("demo%d", n+1)
		_, status, err := users.Create(ctx, service.CreateUserInput{
			Username: username,
			Password: *password,
			Email:    username + "@example.com",
		})
		if err != nil {
			log.Printf("  Failed to create user %s: %v", username, err)
			continue
		}
		if status == service.StatusUserExists {
			fmt.Printf("  User %s already exists\n", username)
		} else {
			fmt.Printf("  Created user %s\n", username)
		}
		names = append(names, username)
	}
	return names
}

func seedModels(ctx context.Context, models *service.ModelService, usernames []string, rng *rand.Rand) []*domain.Model {
	var created []*domain.Model
	for range *modelCount {
		name := adjectives[rng.IntN(len(adjectives))] + " " + nouns[rng.IntN(len(nouns))]
		tags := []string{tagPool[rng.IntN(len(tagPool))], tagPool[rng.IntN(len(tagPool))]}

		m, err := models.Create(ctx, service.CreateModelInput{
			Name:         name,
			Creator:      usernames[rng.IntN(len(usernames))],
			CreationDate: time.Now().Add(-time.Duration(rng.IntN(90*24)) * time.Hour),
			Tags:         tags,
			PublicRead:   rng.IntN(3) == 0,
		})
		if err != nil {
			log.Printf("  Failed to create model %q: %v", name, err)
			continue
		}
		fmt.Printf("  Created model %q by %s (%s)\n", m.Name, m.Creator, m.ID)
		created = append(created, m)
	}
	return created
}

func seedRights(ctx context.Context, rights *service.RightsService, models []*domain.Model, usernames []string, rng *rand.Rand) {
	grants := 0
	for _, m := range models {
		if _, err := rights.GrantWrite(ctx, m.ID, m.Creator); err != nil {
			log.Printf("  Failed to grant %s write on %s: %v", m.Creator, m.ID, err)
			continue
		}
		grants++

		reader := usernames[rng.IntN(len(usernames))]
		if reader == m.Creator {
			continue
		}
		if _, err := rights.GrantRead(ctx, m.ID, reader); err != nil {
			log.Printf("  Failed to grant %s read on %s: %v", reader, m.ID, err)
			continue
		}
		grants++
	}
	fmt.Printf("  Granted %d rights\n", grants)
}

func seedComments(ctx context.Context, comments *service.CommentService, models []*domain.Model, usernames []string, rng *rand.Rand) {
	total := 0
	for _, m := range models {
		posted := m.CreationDate.Add(time.Hour)
		var parentID string

		for n := range rng.IntN(4) {
			c, status, err := comments.Create(ctx, service.CreateCommentInput{
				ModelID:    m.ID,
				Author:     usernames[rng.IntN(len(usernames))],
				Text:       lines[rng.IntN(len(lines))],
				PostedDate: posted.Add(time.Duration(n) * 17 * time.Minute),
				ParentID:   parentID,
			})
			if err != nil || !status.OK() {
				log.Printf("  Failed to comment on %s: status=%q err=%v", m.ID, status, err)
				break
			}
			total++
			// Every other comment replies to the previous one.
			if n%2 == 0 {
				parentID = c.ID
			} else {
				parentID = ""
			}
		}
	}
	fmt.Printf("  Created %d comments\n", total)
}
