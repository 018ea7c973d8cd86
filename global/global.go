package global

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/gocql/gocql"
	minio "github.com/minio/minio-go/v7"
)

// InternalLogger logs errors that should never happen in normal circumstances.
// Defaults to stderr until the bootstrap swaps in the file-backed logger.
var InternalLogger = log.New(os.Stderr, "", log.LstdFlags)

// MonitorLogger logs expected but noteworthy failures
var MonitorLogger = log.New(os.Stderr, "", log.LstdFlags)

// Session for global cassandra cql session
var Session *gocql.Session

// RedisClient for global redis queries and pub/sub
var RedisClient *redis.Client

// MinIOClient for global min io access
var MinIOClient *minio.Client

// AccessTokenDuration determines the length of an access token (1 hour)
var AccessTokenDuration time.Duration = time.Hour * 1

// SessionDuration determines the length of a login session record (60 days)
var SessionDuration time.Duration = time.Hour * 24 * 60

// TypingWindow is how long a typing signal keeps the indicator alive
var TypingWindow time.Duration = 1200 * time.Millisecond

// Context is the default context
var Context = context.Background()

// Validator validates schema structs at the store boundary
var Validator = validator.New()
