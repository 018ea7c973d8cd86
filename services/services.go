package services

import (
	"peerchat/blob"
	"peerchat/broadcast"
	"peerchat/identity"
	"peerchat/middlewares"
	"peerchat/store"
)

// Collaborators the handlers run against, wired by the bootstrap
var (
	Store    store.Store
	Broker   broadcast.Broker
	Uploader blob.Uploader
	Identity identity.Service
)

// Setup wires the collaborators into the gateway
func Setup(st store.Store, broker broadcast.Broker, uploader blob.Uploader, ident identity.Service) {
	Store = st
	Broker = broker
	Uploader = uploader
	Identity = ident
	middlewares.Identity = ident
}
