package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lucsky/cuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/0xzenith/zenith-go/errors"
	"github.com/0xzenith/zenith-go/models"
	"github.com/0xzenith/zenith-go/types/requests"
	"github.com/0xzenith/zenith-go/types/responses"
	"github.com/0xzenith/zenith-go/utils"
)

type AccountService interface {
	CreateAccount(context.Context, *requests.CreateAccountRequest) (*responses.Response[*responses.CreateAccountResponseData], error)
	UpdateWebHookURL(context.Context, *requests.UpdateWebhookURLRequest) error
	GetAccountByAccessToken(context.Context, string) (*models.Account, error)
}

func NewAccountService(dataDatabase *sql.DB, log *zap.Logger) AccountService {
	return &accountService{
		service{
			dataDB: dataDatabase,
			log:    log,
		},
	}
}

type accountService struct {
	service
}

func (a *accountService) CreateAccount(ctx context.Context, req *requests.CreateAccountRequest) (*responses.Response[*responses.CreateAccountResponseData], error) {
	now := time.Now()

	account := &models.Account{
		ID:          uuid.NewString(),
		SN:          cuid.New(),
		DisplayName: req.DisplayName,
		Email:       strings.ToLower(req.Email),
		CreatedAt:   &now,
		UpdatedAt:   &now,
	}

	password, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	tx, err := a.dataDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	// Defer a rollback in case anything fails.
	defer tx.Rollback()

	_, err = sq.
		Insert("accounts").
		Columns("id", "sn", "display_name", "email", "created_at", "updated_at").
		Values(account.ID, account.SN, account.DisplayName, account.Email, now, now).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return nil, errors.HandleDataDBError(err)
	}

	_, err = sq.
		Insert("credentials").
		Columns("id", "password").
		Values(account.ID, string(password)).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return nil, errors.HandleDataDBError(err)
	}

	accessToken := &models.AccessToken{
		ID:          uuid.NewString(),
		Name:        "Default Token",
		Description: "default token for user requests",
		AccountID:   account.ID,
		Token:       "pub_test_" + cuid.Slug(),
	}

	_, err = sq.
		Insert("access_tokens").
		Columns("id", "name", "description", "account_id", "token").
		Values(accessToken.ID, accessToken.Name, accessToken.Description, accessToken.AccountID, accessToken.Token).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return nil, errors.HandleDataDBError(err)
	}

	if err = tx.Commit(); err != nil {
		return nil, errors.HandleDataDBError(err)
	}

	return &responses.Response[*responses.CreateAccountResponseData]{
		Status:  "successful",
		Message: "Account Created successfully",
		Data: &responses.CreateAccountResponseData{
			User:  account,
			Token: accessToken,
		},
	}, nil
}

func (a *accountService) GetAccountByAccessToken(ctx context.Context, token string) (*models.Account, error) {
	row := sq.
		Select("accounts.id", "accounts.email", "accounts.display_name", "webhook_details.callback_url", "webhook_details.webhook_key").
		From("access_tokens").
		Join("accounts on access_tokens.account_id = accounts.id").
		LeftJoin("webhook_details on webhook_details.id = accounts.id").
		Where(sq.Eq{"token": token}).
		RunWith(a.dataDB).
		QueryRowContext(ctx)

	account := &models.Account{}
	err := row.Scan(&account.ID, &account.Email, &account.DisplayName, &account.CallbackURL, &account.WebhookKey)
	if err != nil {
		return nil, errors.HandleDataDBError(err)
	}

	return account, nil
}

func (a *accountService) UpdateWebHookURL(ctx context.Context, req *requests.UpdateWebhookURLRequest) error {
	parent := utils.AccountFromContext(ctx)
	if parent == nil {
		return errors.NewAuthenticationError("no authenticated account")
	}

	_, err := sq.
		Replace("webhook_details").
		Columns("id", "callback_url", "webhook_key").
		Values(parent.ID, req.CallbackURL, req.WebhookKey).
		RunWith(a.dataDB).
		ExecContext(ctx)
	if err != nil {
		return errors.HandleDataDBError(err)
	}

	return nil
}
