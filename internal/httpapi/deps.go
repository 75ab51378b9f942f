package httpapi

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"reelforge/internal/ingest"
	"reelforge/internal/jobstore"
	"reelforge/internal/pkg/logger"
	"reelforge/internal/ports"
	"reelforge/internal/queue"
)

// Deps wires the render-job core into the HTTP surface. RDB, Pool, and SP
// are only consulted by the deep health check; the job pipeline itself
// reaches them indirectly through Store/Ingestor.
type Deps struct {
	Store      *jobstore.Store
	State      *queue.State
	Worker     *queue.Worker
	Supervisor *queue.Supervisor
	Fairness   *queue.FairnessLimiter
	Ingestor   *ingest.Ingestor
	RDB        *redis.Client
	Pool       *pgxpool.Pool
	SP         ports.StorageProvider
	Log        *logger.Logger
}

type Handler struct {
	store      *jobstore.Store
	state      *queue.State
	worker     *queue.Worker
	supervisor *queue.Supervisor
	fairness   *queue.FairnessLimiter
	ingestor   *ingest.Ingestor
	rdb        *redis.Client
	pool       *pgxpool.Pool
	sp         ports.StorageProvider
	log        *logger.Logger
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	return &Handler{
		store:      d.Store,
		state:      d.State,
		worker:     d.Worker,
		supervisor: d.Supervisor,
		fairness:   d.Fairness,
		ingestor:   d.Ingestor,
		rdb:        d.RDB,
		pool:       d.Pool,
		sp:         d.SP,
		log:        log.WithComponent("httpapi"),
	}
}
