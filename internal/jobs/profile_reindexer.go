package jobs

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/horizon-ai/sowlens/internal/domain"
	"github.com/horizon-ai/sowlens/internal/recommend"
)

// ProfileIndexer defines the reindex operation the job depends on.
type ProfileIndexer interface {
	IndexPoolFromFile(ctx context.Context, pool domain.Pool, path string) (int, error)
}

// ProfileReindexer watches the candidate CSV files and re-embeds a
// pool's profiles whenever its source file changes on disk.
type ProfileReindexer struct {
	indexer ProfileIndexer
	files   recommend.SourceFiles
	mtimes  map[domain.Pool]time.Time
}

// NewProfileReindexer creates a ProfileReindexer.
func NewProfileReindexer(indexer ProfileIndexer, files recommend.SourceFiles) *ProfileReindexer {
	return &ProfileReindexer{
		indexer: indexer,
		files:   files,
		mtimes:  make(map[domain.Pool]time.Time),
	}
}

// Prime records the current file mtimes without indexing, so a startup
// that already indexed the pools does not trigger an immediate
// re-embed on the first poll.
func (r *ProfileReindexer) Prime() {
	for _, pool := range domain.Pools() {
		path := r.files.Path(pool)
		if path == "" {
			continue
		}
		if fi, err := os.Stat(path); err == nil {
			r.mtimes[pool] = fi.ModTime()
		}
	}
}

// ProcessJobs implements the JobProcessor interface. A pool that fails
// to reindex keeps its old vectors and its old mtime, so the next poll
// retries it.
func (r *ProfileReindexer) ProcessJobs(ctx context.Context) error {
	for _, pool := range domain.Pools() {
		path := r.files.Path(pool)
		if path == "" {
			continue
		}

		fi, err := os.Stat(path)
		if err != nil {
			log.Printf("profile reindexer: cannot stat %s source %s: %v", pool, path, err)
			continue
		}

		last, seen := r.mtimes[pool]
		if seen && !fi.ModTime().After(last) {
			continue
		}

		n, err := r.indexer.IndexPoolFromFile(ctx, pool, path)
		if err != nil {
			log.Printf("profile reindexer: %s reindex failed: %v", pool, err)
			continue
		}
		r.mtimes[pool] = fi.ModTime()
		log.Printf("profile reindexer: re-embedded %d %s profiles from %s", n, pool, path)
	}
	return nil
}
