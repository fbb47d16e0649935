package services

import "context"

// UserDirectory resolves users by permission and branch membership.
// Identity itself is owned by an external system.
type UserDirectory interface {
	UserHasPermission(ctx context.Context, userID, permissionName string) (bool, error)
	// UsersWithPermission returns the union of users holding the permission
	// directly and through any permission group membership.
	UsersWithPermission(ctx context.Context, permissionName string) ([]string, error)
	UsersInBranch(ctx context.Context, branchID string) ([]string, error)
	IsUserInBranch(ctx context.Context, userID, branchID string) (bool, error)
}

// Notifier delivers approval notifications to users. DeepLink points back to
// the pending action.
type Notifier interface {
	Notify(ctx context.Context, userIDs []string, title, message, deepLink string) error
	// ClearForUserAction removes any outstanding notification the given user
	// has for the given action.
	ClearForUserAction(ctx context.Context, userID, actionID string) error
}

// DocumentFinalizer is the per-document-type hook the workflow state machine
// invokes at terminal states. Finalize runs on full approval and is what
// ultimately posts through the ledger engine; Reject reverts the document's
// state when the workflow is rejected.
type DocumentFinalizer interface {
	Finalize(ctx context.Context, documentID, approverUserID string) error
	Reject(ctx context.Context, documentID string) error
	// DocumentBranch resolves the document's own branch, used by branch steps
	// that leave their branch unset.
	DocumentBranch(ctx context.Context, documentID string) (string, error)
}

// FinalizerRegistry maps document types to their finalizers.
type FinalizerRegistry map[string]DocumentFinalizer
