package ingest

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/sirdesai22/crosswire-replica/internal/models"
	"github.com/sirdesai22/crosswire-replica/internal/session"
)

// Snapshotter lists the full state the backend holds. *backend.Client
// satisfies it.
type Snapshotter interface {
	ListChallenges(ctx context.Context) ([]models.Challenge, error)
	ListMembers(ctx context.Context) ([]models.Member, error)
	ListFiles(ctx context.Context, limit, offset int) ([]models.File, error)
}

const filePageSize = 100

// Bootstrap fetches the challenge, member and file lists concurrently and
// installs them with full-replace syncs in a single mutation. Nothing is
// applied unless every fetch succeeds.
func Bootstrap(ctx context.Context, src Snapshotter, s *session.Session) error {
	var (
		chals []models.Challenge
		mems  []models.Member
		files []models.File
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		chals, err = src.ListChallenges(gctx)
		return err
	})
	g.Go(func() (err error) {
		mems, err = src.ListMembers(gctx)
		return err
	})
	g.Go(func() error {
		for offset := 0; ; offset += filePageSize {
			batch, err := src.ListFiles(gctx, filePageSize, offset)
			if err != nil {
				return err
			}
			files = append(files, batch...)
			if len(batch) < filePageSize {
				return nil
			}
		}
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	// One mutation, so no reader sees a partially installed snapshot.
	s.Mutate(session.Change{Topic: session.TopicSession, Event: "bootstrap"}, func(st *session.State) bool {
		st.Challenges.SetChallenges(chals)
		st.Members.SetMembers(mems)
		st.Files.SetFiles(files)
		return true
	})
	log.Printf("✅ bootstrap challenges=%d members=%d files=%d", len(chals), len(mems), len(files))
	return nil
}
