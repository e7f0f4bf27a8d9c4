package dto

type PresenceResponse struct {
	Connections int `json:"connections"`
	OnlineUsers int `json:"onlineUsers"`
	Rooms       int `json:"rooms"`
}

type UserPresenceResponse struct {
	UserID string `json:"userId"`
	Online bool   `json:"online"`
}

type RoomPresenceResponse struct {
	RoomID  string   `json:"roomId"`
	Members int      `json:"members"`
	Conns   []string `json:"connectionIds"`
}
