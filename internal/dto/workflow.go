package dto

// StartWorkflowRequest routes a document through its active definition.
type StartWorkflowRequest struct {
	DocumentType string  `json:"documentType" binding:"required"`
	DocumentID   string  `json:"documentID" binding:"required"`
	BranchID     *string `json:"branchID"`
}

// ProcessActionRequest approves or rejects a pending workflow action.
// Approve is a pointer so that an explicit false binds correctly.
type ProcessActionRequest struct {
	Approve *bool  `json:"approve" binding:"required"`
	Notes   string `json:"notes"`
}
