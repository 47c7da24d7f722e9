package formance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ducduc1118-design/recash/internal/models"
	"github.com/ducduc1118-design/recash/internal/store"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ---------- User CRUD ----------

// CreateUser writes the profile as metadata on the users:{id} account.
// Email uniqueness is checked before the write, not enforced by the ledger.
func (s *Service) CreateUser(ctx context.Context, params store.CreateUserParams) (*models.User, error) {
	existing, err := s.GetUserByEmail(ctx, params.Email)
	if err == nil && existing != nil {
		zap.L().Info("User with this email already exists in Formance",
			zap.String("existing_id", existing.Id),
			zap.String("email", params.Email))
		return nil, fmt.Errorf("%w: %s", store.ErrDuplicateUser, params.Email)
	}

	userId := params.Id
	if userId == "" {
		userId = uuid.New().String()
	}
	addr := userAccount(userId)
	zap.L().Info("Creating user in Formance", zap.String("address", addr), zap.String("email", params.Email))

	_, err = s.client.Ledger.V2.AddMetadataToAccount(ctx, operations.V2AddMetadataToAccountRequest{
		Ledger:  s.ledger,
		Address: addr,
		RequestBody: map[string]string{
			"entity_type":   "end_user",
			"active":        "true",
			"name":          params.Name,
			"email":         params.Email,
			"email_key":     strings.ToLower(params.Email),
			"password_hash": params.PasswordHash,
			"referral_code": params.ReferralCode,
			"role":          string(params.UserRole()),
			"created_at":    time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user account: %w", err)
	}

	return s.GetUserById(ctx, userId)
}

func (s *Service) GetUserById(ctx context.Context, userId string) (*models.User, error) {
	resp, err := s.client.Ledger.V2.GetAccount(ctx, operations.V2GetAccountRequest{
		Ledger:  s.ledger,
		Address: userAccount(userId),
	})
	if err != nil {
		if isNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", store.ErrUserNotFound, userId)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	acct := resp.V2AccountResponse.Data
	if acct.Metadata["email"] == "" {
		return nil, fmt.Errorf("%w: %s", store.ErrUserNotFound, userId)
	}

	return accountToUser(&acct), nil
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	resp, err := s.client.Ledger.V2.ListAccounts(ctx, operations.V2ListAccountsRequest{
		Ledger:      s.ledger,
		PageSize:    ptrInt64(pageSize),
		RequestBody: metadataQuery(map[string]string{"email_key": strings.ToLower(email)}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search user by email: %w", err)
	}

	for i := range resp.V2AccountsCursorResponse.Cursor.Data {
		acct := &resp.V2AccountsCursorResponse.Cursor.Data[i]
		if isUserAccount(acct.Address) {
			return accountToUser(acct), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", store.ErrUserNotFound, email)
}

func (s *Service) GetUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	var cursor *string
	for {
		resp, err := s.client.Ledger.V2.ListAccounts(ctx, operations.V2ListAccountsRequest{
			Ledger:      s.ledger,
			PageSize:    ptrInt64(pageSize),
			Cursor:      cursor,
			RequestBody: metadataQuery(map[string]string{"entity_type": "end_user", "active": "true"}),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}

		page := resp.V2AccountsCursorResponse.Cursor
		for i := range page.Data {
			if isUserAccount(page.Data[i].Address) {
				users = append(users, *accountToUser(&page.Data[i]))
			}
		}
		if !page.HasMore || page.Next == nil {
			break
		}
		cursor = page.Next
	}

	zap.L().Debug("Retrieved users from Formance", zap.Int("count", len(users)))
	return users, nil
}

// ---------- helpers ----------

func userAccount(userId string) string {
	return "users:" + userId
}

// isUserAccount accepts users:{id} but not deeper paths.
func isUserAccount(address string) bool {
	parts := strings.Split(address, ":")
	return len(parts) == 2 && parts[0] == "users" && parts[1] != ""
}

func accountToUser(acct *shared.V2Account) *models.User {
	meta := acct.Metadata

	created := time.Now()
	if t, err := time.Parse(time.RFC3339, meta["created_at"]); err == nil {
		created = t
	} else if acct.FirstUsage != nil {
		created = *acct.FirstUsage
	}

	role := models.Role(meta["role"])
	if role == "" {
		role = models.RoleUser
	}

	return &models.User{
		Id:           strings.TrimPrefix(acct.Address, "users:"),
		Name:         meta["name"],
		Email:        meta["email"],
		PasswordHash: meta["password_hash"],
		ReferralCode: meta["referral_code"],
		Role:         role,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}
