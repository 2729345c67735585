package models

import "time"

// Notification types.
const (
	NotificationTypeLike    = "like"
	NotificationTypeComment = "comment"
)

// Notification is keyed by the id of the like or comment that triggered
// it, so its existence is derivable 1:1 from the triggering document.
type Notification struct {
	ID        string    `json:"notificationId"`
	Recipient string    `json:"recipient"`
	Sender    string    `json:"sender"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	PostID    string    `json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (n Notification) ToDoc() map[string]any {
	return map[string]any{
		"recipient": n.Recipient,
		"sender":    n.Sender,
		"type":      n.Type,
		"read":      n.Read,
		"postId":    n.PostID,
		"createdAt": n.CreatedAt,
	}
}

func NotificationFromDoc(id string, doc map[string]any) Notification {
	return Notification{
		ID:        id,
		Recipient: docString(doc, "recipient"),
		Sender:    docString(doc, "sender"),
		Type:      docString(doc, "type"),
		Read:      docBool(doc, "read"),
		PostID:    docString(doc, "postId"),
		CreatedAt: docTime(doc, "createdAt"),
	}
}
