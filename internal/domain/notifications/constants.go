package notifications

const (
	TypeGoalApproved         = "goal_approved"
	TypeGoalRejected         = "goal_rejected"
	TypeGoalCompleted        = "goal_completed"
	TypeEvaluationCreated    = "evaluation_created"
	TypeEvaluationFinalized  = "evaluation_finalized"
	TypeEvaluationApproved   = "evaluation_approved"
	TypeObjectionFiled       = "objection_filed"
	TypeObjectionResolved    = "objection_resolved"
	TypePIPCreated           = "pip_created"
	TypePIPClosed            = "pip_closed"
	TypeTrainingResultPosted = "training_result_posted"
)
