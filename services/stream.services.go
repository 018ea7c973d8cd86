package services

import (
	"strings"
	"time"

	"peerchat/errors"
	"peerchat/global"
	"peerchat/schemas"

	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"
)

type streamFrame struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type relationsFrame struct {
	Friends  []schemas.FriendSchema  `json:"friends"`
	Requests []schemas.RequestSchema `json:"requests"`
	Unread   map[string]int          `json:"unread"`
}

// Stream starts and maintains the websocket connection, forwarding the
// session's live events (messages, relation changes, typing, inbox cues)
// as JSON frames
func Stream(ws *websocket.Conn) {

	var heartbeat = 0
	defer ws.Close()
	forceClose := make(chan bool)
	close := false
	go func() {
		close = <-forceClose
	}()

	profile := ws.Locals("profile").(schemas.ProfileSchema)
	userID := profile.UserID

	client, err := sessionClient(profile)
	if err != nil {
		errors.HandleWebsocketError(ws, "websocket_session", err.Error())
		return
	}

	outbound := make(chan []byte, 64)
	push := func(frameType string, payload interface{}) {
		encoded, err := jsoniter.Marshal(streamFrame{Type: frameType, Payload: payload})
		if err != nil {
			errors.HandleWebsocketError(ws, "websocket_encode", err.Error())
			return
		}
		select {
		case outbound <- encoded:
		default:
		}
	}

	client.Session.OnAppend = func(message schemas.MessageSchema) {
		push("message", message)
	}
	client.Friends.OnChange = func() {
		push("relations", relationsFrame{
			Friends:  client.Friends.Friends(),
			Requests: client.Friends.IncomingRequests(),
			Unread:   client.Inbox.Counts(),
		})
	}
	client.OnTyping = func(typing bool) {
		push("typing", typing)
	}
	client.Inbox.ShouldNotify = func() bool { return true }
	client.Inbox.Notify = func(message schemas.MessageSchema) {
		push("inbox", message)
	}
	defer func() {
		client.Session.OnAppend = nil
		client.Friends.OnChange = nil
		client.OnTyping = nil
		client.Inbox.ShouldNotify = nil
		client.Inbox.Notify = nil
	}()

	go func() {
		for encoded := range outbound {
			if close {
				break
			}
			if err := ws.WriteMessage(websocket.TextMessage, encoded); err != nil {
				errors.HandleWebsocketError(ws, "websocket_write", err.Error())
				break
			}
		}
	}()

	go func() {
		for {
			if heartbeat >= 5 {
				break
			}
			if close {
				break
			}
			select {
			case outbound <- []byte("PING"):
			default:
			}
			heartbeat++
			time.Sleep(time.Second * 50) //50 seconds
		}
	}()

	var (
		mt  int
		msg []byte
		req string
	)
	for {
		if err = ws.SetReadDeadline(time.Now().Add(time.Second * 190)); err != nil {
			errors.HandleWebsocketError(ws, "websocket_read_deadline", err.Error())
			break
		}
		if mt, msg, err = ws.ReadMessage(); err != nil {
			if err != websocket.ErrCloseSent && !websocket.IsCloseError(err, 1000) && !strings.Contains(err.Error(), "i/o timeout") {
				errors.HandleWebsocketError(ws, "websocket_read", err.Error())
			}
			break
		}
		if mt == websocket.BinaryMessage {
			errors.HandleWebsocketError(ws, "websocket_read", "binary message")
			break
		}

		req = string(msg)

		if req == "PONG" {
			heartbeat = 0
			continue
		}

		switch req {
		case "typing":
			client.NotifyTyping(global.Context)
		default:
			errors.HandleWebsocketError(ws, "websocket_type", req)
		}
	}

	forceClose <- true
	global.MonitorLogger.Println(userID, "stream closed")

}
