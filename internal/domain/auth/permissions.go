package auth

const (
	RoleAdmin    = "admin"
	RoleHR       = "hr"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

var AllRoles = []string{RoleAdmin, RoleHR, RoleManager, RoleEmployee}

const (
	PermEmployeesRead       = "core.employees.read"
	PermEmployeesWrite      = "core.employees.write"
	PermGoalsRead           = "goals.read"
	PermGoalsWrite          = "goals.write"
	PermGoalsApprove        = "goals.approve"
	PermEvaluationsRead     = "evaluations.read"
	PermEvaluationsWrite    = "evaluations.write"
	PermEvaluationsFinalize = "evaluations.finalize"
	PermEvaluationsApprove  = "evaluations.approve"
	PermPIPsRead            = "pips.read"
	PermPIPsWrite           = "pips.write"
	PermTrainingRead        = "training.read"
	PermTrainingWrite       = "training.write"
	PermAuditRead           = "audit.read"
	PermMetricsRead         = "metrics.read"
)

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermEmployeesRead,
		PermGoalsRead,
		PermGoalsWrite,
		PermEvaluationsRead,
		PermTrainingRead,
	},
	RoleManager: {
		PermEmployeesRead,
		PermGoalsRead,
		PermGoalsWrite,
		PermGoalsApprove,
		PermEvaluationsRead,
		PermEvaluationsWrite,
		PermEvaluationsFinalize,
		PermPIPsRead,
		PermPIPsWrite,
		PermTrainingRead,
	},
	RoleHR: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermGoalsRead,
		PermGoalsWrite,
		PermGoalsApprove,
		PermEvaluationsRead,
		PermEvaluationsWrite,
		PermEvaluationsFinalize,
		PermEvaluationsApprove,
		PermPIPsRead,
		PermPIPsWrite,
		PermTrainingRead,
		PermTrainingWrite,
		PermAuditRead,
	},
	RoleAdmin: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermGoalsRead,
		PermGoalsWrite,
		PermGoalsApprove,
		PermEvaluationsRead,
		PermEvaluationsWrite,
		PermEvaluationsFinalize,
		PermEvaluationsApprove,
		PermPIPsRead,
		PermPIPsWrite,
		PermTrainingRead,
		PermTrainingWrite,
		PermAuditRead,
		PermMetricsRead,
	},
}

func RoleHasPermission(roleName, permission string) bool {
	for _, perm := range RolePermissions[roleName] {
		if perm == permission {
			return true
		}
	}
	return false
}
