package domain

import "fmt"

// Ключи кеша: единое место, чтобы не расползались по коду.
// Всё, что относится к пользователю, живёт под user:{id}:* и сносится одним ClearUserCache.
func CacheKeyUserPrefix(uid UserID) string { return "user:" + uid.String() + ":" }

func CacheKeyResumeList(uid UserID, page, limit int) string {
	return fmt.Sprintf("%sresumes:%d:%d", CacheKeyUserPrefix(uid), page, limit)
}

func CacheKeyMyResume(uid UserID) string { return CacheKeyUserPrefix(uid) + "my_resume" }

func CacheKeyResume(uid UserID, id ResumeID) string {
	return CacheKeyUserPrefix(uid) + "resume:" + id.String()
}

func CacheKeyResumeVersions(uid UserID, id ResumeID) string {
	return CacheKeyResume(uid, id) + ":versions"
}

func CacheKeyResumeCount(uid UserID) string { return CacheKeyUserPrefix(uid) + "resume_count" }

func CacheKeyTokenJTI(jti string) string { return "jti:" + jti }
