package requests

type RegisterUserRequest struct {
	UserID      string `uri:"user_id" validate:"required"`
	Address     string `json:"address" validate:"required,eth_addr"`
	CountryCode string `json:"country_code" validate:"required,iso3166_1_alpha2"`
}

type UpdateProfileRequest struct {
	UserID      string `uri:"user_id" validate:"required"`
	Address     string `json:"address" validate:"required,eth_addr"`
	CountryCode string `json:"country_code" validate:"required,iso3166_1_alpha2"`
}

type LookupRegistryRequest struct {
	UserID  string `uri:"user_id" validate:"required"`
	Address string `query:"address" validate:"required,eth_addr"`
}
