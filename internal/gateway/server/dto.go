package server

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginData struct {
	Username    string `json:"username"`
	AccessToken string `json:"accessToken"`
}

type userData struct {
	Username string `json:"username"`
}

type userStatus struct {
	Username string `json:"username"`
	IsOnline bool   `json:"isOnline"`
}

type pageData struct {
	Page     string `json:"page"`
	Username string `json:"username"`
}
