// Package models defines the document types stored in the backing
// document store and the request bodies bound at the HTTP boundary.
package models

import "time"

// Collection names.
const (
	CollectionUsers         = "users"
	CollectionPosts         = "posts"
	CollectionComments      = "comments"
	CollectionLikes         = "likes"
	CollectionNotifications = "notifications"
)

func docString(doc map[string]any, key string) string {
	s, _ := doc[key].(string)
	return s
}

func docBool(doc map[string]any, key string) bool {
	b, _ := doc[key].(bool)
	return b
}

// docInt tolerates the numeric types the different store backends decode
// into (int64 from Firestore, int32 from Mongo, float64 from JSON).
func docInt(doc map[string]any, key string) int64 {
	switch v := doc[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// docTime tolerates time.Time values and the RFC3339 strings that change
// events carry after a trip through JSON.
func docTime(doc map[string]any, key string) time.Time {
	switch v := doc[key].(type) {
	case time.Time:
		return v
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}
		}
		return t
	default:
		return time.Time{}
	}
}
