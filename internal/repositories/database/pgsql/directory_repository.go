package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fincore/backoffice/internal/apperrors"
	portssvc "github.com/fincore/backoffice/internal/core/ports/services"
)

// PgxDirectoryRepository answers permission and branch membership questions
// from the replicated directory tables. Identity itself lives in an external
// system; these tables are read-only projections of it.
type PgxDirectoryRepository struct {
	BaseRepository
}

// newPgxDirectoryRepository creates a pgsql-backed UserDirectory.
func newPgxDirectoryRepository(pool *pgxpool.Pool) portssvc.UserDirectory {
	return &PgxDirectoryRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portssvc.UserDirectory = (*PgxDirectoryRepository)(nil)

// UserHasPermission reports whether the user holds the permission directly or
// through a permission group.
func (r *PgxDirectoryRepository) UserHasPermission(ctx context.Context, userID, permissionName string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM user_permissions
			WHERE user_id = $1 AND permission_name = $2
			UNION
			SELECT 1
			FROM permission_group_members m
			JOIN permission_group_permissions p ON p.group_name = m.group_name
			WHERE m.user_id = $1 AND p.permission_name = $2
		);
	`
	var has bool
	if err := r.Pool.QueryRow(ctx, query, userID, permissionName).Scan(&has); err != nil {
		return false, apperrors.NewAppError(500, "failed to check permission "+permissionName, err)
	}
	return has, nil
}

// UsersWithPermission returns the union of users holding the permission
// directly and through any permission group membership.
func (r *PgxDirectoryRepository) UsersWithPermission(ctx context.Context, permissionName string) ([]string, error) {
	query := `
		SELECT user_id FROM user_permissions WHERE permission_name = $1
		UNION
		SELECT m.user_id
		FROM permission_group_members m
		JOIN permission_group_permissions p ON p.group_name = m.group_name
		WHERE p.permission_name = $1;
	`
	rows, err := r.Pool.Query(ctx, query, permissionName)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query users with permission "+permissionName, err)
	}
	defer rows.Close()

	userIDs := []string{}
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan user id row", err)
		}
		userIDs = append(userIDs, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating user id rows", err)
	}

	return userIDs, nil
}

// UsersInBranch returns the users assigned to a branch.
func (r *PgxDirectoryRepository) UsersInBranch(ctx context.Context, branchID string) ([]string, error) {
	query := `SELECT user_id FROM user_branches WHERE branch_id = $1;`

	rows, err := r.Pool.Query(ctx, query, branchID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query users in branch "+branchID, err)
	}
	defer rows.Close()

	userIDs := []string{}
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan user id row", err)
		}
		userIDs = append(userIDs, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating user id rows", err)
	}

	return userIDs, nil
}

// IsUserInBranch reports whether the user is assigned to the branch.
func (r *PgxDirectoryRepository) IsUserInBranch(ctx context.Context, userID, branchID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM user_branches WHERE user_id = $1 AND branch_id = $2);`

	var member bool
	if err := r.Pool.QueryRow(ctx, query, userID, branchID).Scan(&member); err != nil {
		return false, apperrors.NewAppError(500, "failed to check branch membership for "+userID, err)
	}
	return member, nil
}
