package services

import (
	"sync"

	"peerchat/chat"
	"peerchat/global"
	"peerchat/schemas"

	"github.com/segmentio/fasthash/fnv1a"
)

const CONCURRENCY = 32

type concClientTable struct {
	table map[string]*chat.Client
	sync.RWMutex
}

type concClientTableShards []*concClientTable

func (shards concClientTableShards) getShard(userID string) *concClientTable {
	return shards[fnv1a.HashString32(userID)%CONCURRENCY]
}

var clientShards concClientTableShards = func() concClientTableShards {
	shards := make(concClientTableShards, CONCURRENCY)
	for i := range shards {
		shards[i] = &concClientTable{table: make(map[string]*chat.Client)}
	}
	return shards
}()

// sessionClient returns the user's running chat client, starting one on
// first use
func sessionClient(profile schemas.ProfileSchema) (*chat.Client, error) {
	shard := clientShards.getShard(profile.UserID)

	shard.RLock()
	client := shard.table[profile.UserID]
	shard.RUnlock()
	if client != nil {
		return client, nil
	}

	shard.Lock()
	defer shard.Unlock()
	if client = shard.table[profile.UserID]; client != nil {
		return client, nil
	}

	client = chat.NewClient(profile, Store, Broker, Uploader)
	if err := client.Start(global.Context); err != nil {
		return nil, err
	}
	shard.table[profile.UserID] = client
	return client, nil
}

// dropSessionClient closes and forgets the user's chat client
func dropSessionClient(userID string) {
	shard := clientShards.getShard(userID)

	shard.Lock()
	client := shard.table[userID]
	delete(shard.table, userID)
	shard.Unlock()

	if client != nil {
		client.Close()
	}
}
