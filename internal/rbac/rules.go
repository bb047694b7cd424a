package rbac

// Permissions
const (
	PermQuizCreate     = "quiz:create"
	PermQuizView       = "quiz:view"
	PermAttemptCreate  = "attempt:create"
	PermAttemptSave    = "attempt:save"
	PermAttemptSubmit  = "attempt:submit"
	PermAttemptViewOwn = "attempt:view-own"
	PermAttemptViewAll = "attempt:view-all"
	PermAttemptGrade   = "attempt:grade"
)

var allPermissions = []string{
	PermQuizCreate, PermQuizView,
	PermAttemptCreate, PermAttemptSave, PermAttemptSubmit,
	PermAttemptViewOwn, PermAttemptViewAll, PermAttemptGrade,
}

// Default policy.
var RolePermissions = map[string][]string{
	"student": {
		PermQuizView,
		PermAttemptCreate,
		PermAttemptSave,
		PermAttemptSubmit,
		PermAttemptViewOwn,
	},
	"teacher": {
		PermQuizCreate,
		PermQuizView,
		PermAttemptViewAll,
		PermAttemptGrade,
	},
	"admin": {
		"*", // everything
	},
}
