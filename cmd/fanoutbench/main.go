package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/socialnet/internal/cache"
	"github.com/d60-Lab/socialnet/internal/model"
)

// Measures one full identity fan-out pass over a keyspace of follower
// snapshot collections, where a fraction of entries reference the renamed
// user. Run: go run ./cmd/fanoutbench -collections 2000 -followers 50
func main() {
	collections := flag.Int("collections", 1000, "snapshot collections to seed")
	followers := flag.Int("followers", 50, "followers per collection")
	every := flag.Int("every", 10, "target user appears in every Nth collection")
	flag.Parse()

	srv, err := miniredis.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "miniredis:", err)
		os.Exit(1)
	}
	defer srv.Close()

	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	store := cache.NewFollowerStore(rdb, time.Hour)

	target := model.FollowerSnapshot{ID: uuid.NewString(), Username: "alice", ProfilePic: "old.png"}
	expected := 0

	fmt.Printf("seeding %d collections x %d followers...\n", *collections, *followers)
	for i := 0; i < *collections; i++ {
		followedID := uuid.NewString()
		snaps := make([]model.FollowerSnapshot, 0, *followers)
		for j := 0; j < *followers; j++ {
			snaps = append(snaps, model.FollowerSnapshot{
				ID:       uuid.NewString(),
				Username: fmt.Sprintf("user_%d_%d", i, j),
			})
		}
		if i%*every == 0 {
			snaps[0] = target
			expected++
		}
		if err := store.WriteAll(ctx, followedID, snaps); err != nil {
			fmt.Fprintln(os.Stderr, "seed:", err)
			os.Exit(1)
		}
	}

	renamed := model.UserView{ID: target.ID, Username: "alicia", ProfilePic: "new.png"}
	start := time.Now()
	patched, err := store.PatchIdentity(ctx, renamed)
	elapsed := time.Since(start)
	if err != nil {
		fmt.Fprintln(os.Stderr, "patch:", err)
		os.Exit(1)
	}

	total := *collections * *followers
	fmt.Printf("patched %d/%d entries (scanned %d snapshots) in %v (%.0f snapshots/s)\n",
		patched, expected, total, elapsed, float64(total)/elapsed.Seconds())
}
