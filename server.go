package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"peerchat/blob"
	"peerchat/broadcast"
	"peerchat/config"
	"peerchat/errors"
	"peerchat/global"
	"peerchat/identity"
	"peerchat/routes"
	"peerchat/services"
	"peerchat/store"

	redis "github.com/go-redis/redis/v8"
	"github.com/gocql/gocql"
	fiber "github.com/gofiber/fiber/v2"
	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

func init() {
	internalErrorsFile, err := os.OpenFile("internal_errors.txt", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	errors.HandleFatalError(err)

	monitorErrorsFile, err := os.OpenFile("monitor_logs.txt", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	errors.HandleFatalError(err)

	global.InternalLogger = log.New(internalErrorsFile, "", log.LstdFlags)
	global.MonitorLogger = log.New(monitorErrorsFile, "", log.LstdFlags)

	data, err := ioutil.ReadFile("./config.json")
	errors.HandleFatalError(err)

	err = json.Unmarshal(data, &config.Config)
	errors.HandleFatalError(err)

	global.MinIOClient, err = minio.New(config.Config.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.Config.MinIO.User, config.Config.MinIO.Password, ""),
		Secure: false,
	})
	errors.HandleFatalError(err)

	exists, err := global.MinIOClient.BucketExists(global.Context, config.Config.MinIO.Bucket)
	errors.HandleFatalError(err)
	if !exists {
		global.MinIOClient.MakeBucket(global.Context, config.Config.MinIO.Bucket, minio.MakeBucketOptions{Region: "us-east-1"})
	}

	global.RedisClient = redis.NewClient(&redis.Options{
		Addr:     config.Config.RedisURI,
		Password: "",
		DB:       0,
	})

	cluster := gocql.NewCluster(config.Config.ScyllaURI)
	cluster.Keyspace = config.Config.Keyspace
	global.Session, err = cluster.CreateSession()
	errors.HandleFatalError(err)
	fmt.Println("ScyllaDB initialized")
	fmt.Printf("Keyspace: %s\n\n", cluster.Keyspace)

	err = global.Session.Query(`
		CREATE TABLE IF NOT EXISTS ` + config.Config.Keyspace + `.profiles (
			user_id text,
			username text,
			nickname text,
			avatar_url text,
			code_hash text,
			PRIMARY KEY (user_id))
		WITH compaction = { 'class' :  'LeveledCompactionStrategy'  };
	`).Exec()

	errors.HandleFatalError(err)

	err = global.Session.Query(`
		CREATE TABLE IF NOT EXISTS ` + config.Config.Keyspace + `.friendships (
			relation_id text,
			requester_id text,
			addressee_id text,
			status text,
			PRIMARY KEY (relation_id))
		WITH compaction = { 'class' :  'LeveledCompactionStrategy'  };
	`).Exec()

	errors.HandleFatalError(err)

	err = global.Session.Query(`
		CREATE TABLE IF NOT EXISTS ` + config.Config.Keyspace + `.messages (
			chat_id text,
			created timestamp,
			message_id text,
			sender_id text,
			receiver_id text,
			body text,
			attachment_url text,
			attachment_type text,
			PRIMARY KEY (chat_id, created))
		WITH
		CLUSTERING ORDER BY (created ASC) AND
		compaction = { 'class' :  'SizeTieredCompactionStrategy'  };
	`).Exec()

	errors.HandleFatalError(err)

}

func main() {

	defer global.Session.Close()

	st := store.NewScyllaStore(global.Session, global.RedisClient)
	broker := broadcast.NewRedisBroker(global.RedisClient)
	uploader := blob.NewMinIOUploader(global.MinIOClient, config.Config.MinIO.Bucket, config.Config.MinIO.PublicURL)
	ident := identity.NewStoreIdentity(st, global.RedisClient, config.Config.Secret)

	services.Setup(st, broker, uploader, ident)

	app := fiber.New()
	defer app.Shutdown()

	routes.SetRoutes(app)

	fmt.Println("Starting server on port: " + config.Config.Port)
	log.Fatal(app.Listen(config.Config.Port))

}
