package responses

import "github.com/0xzenith/zenith-go/models"

type CreateAccountResponseData struct {
	User  *models.Account     `json:"user"`
	Token *models.AccessToken `json:"token"`
}
