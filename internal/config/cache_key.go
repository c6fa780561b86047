package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// AdminSessionKey returns the cache key for an admin login session.
func (r *CacheKeyStruct) AdminSessionKey(sessionID string) string {
	return fmt.Sprintf("admin:session:%s", sessionID)
}

// SubmissionFeedChannel returns the Redis PubSub channel name for new submissions.
func (r *CacheKeyStruct) SubmissionFeedChannel() string {
	return "submissions:feed"
}

var CacheKey = NewCacheKeyStruct()
