package deps

import (
	"time"

	"github.com/MrSnakeDoc/megamenu/internal/index"
	"github.com/MrSnakeDoc/megamenu/internal/logger"
	redisstore "github.com/MrSnakeDoc/megamenu/internal/store/redis"
)

type Deps struct {
	Logger             logger.Logger
	StartTime          time.Time
	Version            string
	Commit             string
	BuildDate          string
	GoVersion          string
	Instance           string            // name of this process in cluster broadcasts
	AllowedHosts       []string          // Host headers allowed to reach admin routes
	AllowedCIDRS       []string          // IPs allowed to reach admin and probe routes
	TrustProxy         bool              // true if running behind a trusted reverse proxy
	SearchBurst        int               // search rate limit bucket size per IP
	SearchRefillPerMin int               // search tokens regained per minute per IP
	MenuIndex          *index.MenuIndex  // latest source snapshot
	Store              *redisstore.Store // nil when Redis is disabled
	ReloadTrigger      chan struct{}     // manual reload trigger, buffered 1
}
