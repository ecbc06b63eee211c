package matching

import (
	"crypto/sha256"
	"fmt"
)

// UserSkillID derives the stable vector id for a (user, skill) pair. The same
// inputs always produce the same id, so re-indexing overwrites instead of
// duplicating.
func UserSkillID(userID, skillName string) string {
	return stableID(fmt.Sprintf("user_%s_skill_%s", userID, skillName))
}

// TaskID derives the stable vector id for a task.
func TaskID(taskID string) string {
	return stableID(fmt.Sprintf("task_%s", taskID))
}

func stableID(base string) string {
	sum := sha256.Sum256([]byte(base))
	return fmt.Sprintf("%x", sum)
}
