package chat

import (
	"context"
	"sort"
	"strings"
	"sync"

	"peerchat/errors"
	"peerchat/schemas"
	"peerchat/store"
)

// AcceptResult reports the outcome of the two-phase accept write. Accepted
// means the original row was transitioned; MirrorCreated is false when the
// mirror insert failed, which is tolerated (the requester's live reload
// picks the friendship up once the mirror lands).
type AcceptResult struct {
	Accepted      bool
	MirrorCreated bool
}

// FriendshipManager owns the friendship rows of one user: request, accept,
// decline, and the live friend / incoming-request lists. Any change event
// touching the user triggers a full reload (small N, simplicity over
// incremental diffing).
type FriendshipManager struct {
	store  store.Store
	userID string

	mu       sync.Mutex
	friends  []schemas.FriendSchema
	requests []schemas.RequestSchema
	sub      *store.Subscription

	// OnChange fires after every reload, outside the lock
	OnChange func()
}

// NewFriendshipManager builds the manager for one user
func NewFriendshipManager(st store.Store, userID string) *FriendshipManager {
	return &FriendshipManager{store: st, userID: userID}
}

func (m *FriendshipManager) pairFilter(otherID string) store.Filter {
	return store.Either(
		store.Where(store.Eq("requester_id", m.userID), store.Eq("addressee_id", otherID)),
		store.Where(store.Eq("requester_id", otherID), store.Eq("addressee_id", m.userID)),
	)
}

// Start loads the lists and subscribes to every relationship change
// touching the user in either role
func (m *FriendshipManager) Start(ctx context.Context) error {
	if err := m.reload(ctx); err != nil {
		return err
	}

	filter := store.Either(
		store.Where(store.Eq("requester_id", m.userID)),
		store.Where(store.Eq("addressee_id", m.userID)),
	)
	sub, err := m.store.Subscribe("friendships", filter, func(store.Event) {
		if err := m.reload(context.Background()); err != nil {
			errors.HandleBasicError(err)
			return
		}
		if m.OnChange != nil {
			m.OnChange()
		}
	})
	if err != nil {
		return errors.New(errors.Store, "friendships", err.Error())
	}

	m.mu.Lock()
	m.sub = sub
	m.mu.Unlock()
	return nil
}

// Stop releases the live subscription
func (m *FriendshipManager) Stop() {
	m.mu.Lock()
	sub := m.sub
	m.sub = nil
	m.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
}

// reload recomputes both lists from scratch
func (m *FriendshipManager) reload(ctx context.Context) error {
	filter := store.Either(
		store.Where(store.Eq("requester_id", m.userID)),
		store.Where(store.Eq("addressee_id", m.userID)),
	)
	rows, err := m.store.Select(ctx, "friendships", filter)
	if err != nil {
		return errors.New(errors.Store, "friendships", err.Error())
	}

	var otherIDs []interface{}
	seen := make(map[string]bool)
	var pending []schemas.FriendshipSchema

	for _, row := range rows {
		friendship, err := schemas.FriendshipFromRow(row)
		if err != nil {
			errors.HandleBasicError(err)
			continue
		}
		switch friendship.Status {
		case schemas.StatusAccepted:
			otherID := friendship.OtherID(m.userID)
			if !seen[otherID] {
				seen[otherID] = true
				otherIDs = append(otherIDs, otherID)
			}
		case schemas.StatusPending:
			if friendship.AddresseeID == m.userID {
				pending = append(pending, friendship)
			}
		}
	}

	profiles, err := m.resolveProfiles(ctx, otherIDs, pending)
	if err != nil {
		return err
	}

	friends := make([]schemas.FriendSchema, 0, len(otherIDs))
	for _, id := range otherIDs {
		otherID := id.(string)
		if profile, ok := profiles[otherID]; ok {
			friends = append(friends, profile.Friend())
		} else {
			friends = append(friends, schemas.FriendSchema{UserID: otherID, Nickname: otherID})
		}
	}
	sort.SliceStable(friends, func(i, j int) bool {
		return strings.ToLower(friends[i].Nickname) < strings.ToLower(friends[j].Nickname)
	})

	requests := make([]schemas.RequestSchema, 0, len(pending))
	for _, friendship := range pending {
		request := schemas.RequestSchema{
			RelationID:  friendship.RelationID,
			RequesterID: friendship.RequesterID,
			Nickname:    friendship.RequesterID,
		}
		if profile, ok := profiles[friendship.RequesterID]; ok {
			request.Nickname = profile.DisplayName()
		}
		requests = append(requests, request)
	}

	m.mu.Lock()
	m.friends = friends
	m.requests = requests
	m.mu.Unlock()
	return nil
}

// resolveProfiles fetches the display profiles for friends and requesters
func (m *FriendshipManager) resolveProfiles(ctx context.Context, otherIDs []interface{}, pending []schemas.FriendshipSchema) (map[string]schemas.ProfileSchema, error) {
	wanted := append([]interface{}{}, otherIDs...)
	seen := make(map[string]bool, len(otherIDs))
	for _, id := range otherIDs {
		seen[id.(string)] = true
	}
	for _, friendship := range pending {
		if !seen[friendship.RequesterID] {
			seen[friendship.RequesterID] = true
			wanted = append(wanted, friendship.RequesterID)
		}
	}

	profiles := make(map[string]schemas.ProfileSchema, len(wanted))
	if len(wanted) == 0 {
		return profiles, nil
	}

	rows, err := m.store.Select(ctx, "profiles", store.Where(store.In("user_id", wanted...)))
	if err != nil {
		return nil, errors.New(errors.Store, "profiles", err.Error())
	}
	for _, row := range rows {
		profile, err := schemas.ProfileFromRow(row)
		if err != nil {
			errors.HandleBasicError(err)
			continue
		}
		profiles[profile.UserID] = profile
	}
	return profiles, nil
}

// Friends returns the current friend list
func (m *FriendshipManager) Friends() []schemas.FriendSchema {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]schemas.FriendSchema{}, m.friends...)
}

// IncomingRequests returns the pending rows addressed to the user
func (m *FriendshipManager) IncomingRequests() []schemas.RequestSchema {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]schemas.RequestSchema{}, m.requests...)
}

// SendRequest resolves the handle and creates one pending row. All
// validation and conflict checks run before any write.
func (m *FriendshipManager) SendRequest(ctx context.Context, targetHandle string) error {
	if strings.TrimSpace(targetHandle) == "" {
		return errors.New(errors.Validation, "Handle", "empty")
	}

	rows, err := m.store.Select(ctx, "profiles", store.Where(store.Eq("username", targetHandle)))
	if err != nil {
		return errors.New(errors.Store, "profiles", err.Error())
	}
	if len(rows) == 0 {
		return errors.New(errors.NotFound, "Handle", "unknown")
	}
	target, err := schemas.ProfileFromRow(rows[0])
	if err != nil {
		return errors.New(errors.Store, "profiles", err.Error())
	}
	if target.UserID == m.userID {
		return errors.New(errors.Conflict, "Handle", "self")
	}

	existing, err := m.store.Select(ctx, "friendships", m.pairFilter(target.UserID))
	if err != nil {
		return errors.New(errors.Store, "friendships", err.Error())
	}
	for _, row := range existing {
		friendship, err := schemas.FriendshipFromRow(row)
		if err != nil {
			errors.HandleBasicError(err)
			continue
		}
		if friendship.Status == schemas.StatusAccepted {
			return errors.New(errors.Conflict, "Friendship", "already friends")
		}
		return errors.New(errors.Conflict, "Friendship", "request already pending")
	}

	_, err = m.store.Insert(ctx, "friendships", store.Row{
		"requester_id": m.userID,
		"addressee_id": target.UserID,
		"status":       schemas.StatusPending,
	})
	if err != nil {
		return errors.New(errors.Store, "friendships", err.Error())
	}
	return nil
}

// Accept transitions the pending row and inserts the mirror row. The two
// writes are not atomic: a mirror failure is logged and reported in the
// result, never rolled back.
func (m *FriendshipManager) Accept(ctx context.Context, request schemas.RequestSchema) (AcceptResult, error) {
	count, err := m.store.Update(ctx, "friendships",
		store.Where(store.Eq("relation_id", request.RelationID)),
		store.Row{"status": schemas.StatusAccepted},
	)
	if err != nil {
		return AcceptResult{}, errors.New(errors.Store, "friendships", err.Error())
	}
	if count == 0 {
		return AcceptResult{}, errors.New(errors.NotFound, "Request", "gone")
	}

	_, err = m.store.Insert(ctx, "friendships", store.Row{
		"requester_id": m.userID,
		"addressee_id": request.RequesterID,
		"status":       schemas.StatusAccepted,
	})
	if err != nil {
		errors.HandleBasicError(errors.New(errors.Store, "friendships mirror", err.Error()))
		return AcceptResult{Accepted: true, MirrorCreated: false}, nil
	}
	return AcceptResult{Accepted: true, MirrorCreated: true}, nil
}

// Decline deletes the pending row; declining an already-removed request is
// a no-op
func (m *FriendshipManager) Decline(ctx context.Context, request schemas.RequestSchema) error {
	_, err := m.store.Delete(ctx, "friendships",
		store.Where(store.Eq("relation_id", request.RelationID), store.Eq("status", schemas.StatusPending)),
	)
	if err != nil {
		return errors.New(errors.Store, "friendships", err.Error())
	}
	return nil
}
