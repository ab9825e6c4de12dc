package server

import (
	"net/http"

	"github.com/dmitrijs2005/gophchat/internal/authapi"
	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/gateway/access"
	"github.com/dmitrijs2005/gophchat/internal/gateway/respond"
	"github.com/dmitrijs2005/gophchat/internal/gateway/verifier"
	"github.com/gin-gonic/gin"
)

func (s *Server) health(c *gin.Context) {
	respond.JSON(c, http.StatusOK, nil, "ok")
}

func (s *Server) page(c *gin.Context) {
	c.JSON(http.StatusOK, pageData{Page: c.Request.URL.Path, Username: access.Identity(c)})
}

// checkUsername tells the sign-up form whether a name is still free.
func (s *Server) checkUsername(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		respond.Abort(c, http.StatusBadRequest, "username is required")
		return
	}

	resp, err := s.authority.UsernameExists(c.Request.Context(), &authapi.UsernameExistsRequest{Username: username})
	if err != nil {
		code, msg := httpStatus(err)
		respond.Abort(c, code, msg)
		return
	}

	if resp.Exists {
		respond.Abort(c, http.StatusConflict, "username is already taken")
		return
	}
	respond.JSON(c, http.StatusOK, userData{Username: username}, "username is available")
}

func (s *Server) signUp(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Abort(c, http.StatusBadRequest, "username and password are required")
		return
	}

	resp, err := s.authority.Register(c.Request.Context(), &authapi.RegisterRequest{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		code, msg := httpStatus(err)
		respond.Abort(c, code, msg)
		return
	}

	respond.JSON(c, http.StatusCreated, userData{Username: resp.Username}, "user registered")
}

func (s *Server) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Abort(c, http.StatusBadRequest, "username and password are required")
		return
	}

	resp, err := s.authority.Login(c.Request.Context(), &authapi.LoginRequest{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		code, msg := httpStatus(err)
		respond.Abort(c, code, msg)
		return
	}

	s.cookies.Set(c, resp.AccessToken)
	respond.JSON(c, http.StatusOK, loginData{Username: resp.Username, AccessToken: resp.AccessToken}, "logged in")
}

// logout revokes the presented credential and always clears the cookie.
func (s *Server) logout(c *gin.Context) {
	credential := access.Credential(c)
	s.cookies.Clear(c)

	if credential == "" {
		respond.JSON(c, http.StatusOK, nil, "logged out")
		return
	}

	ctx := authapi.WithAccessToken(c.Request.Context(), credential)
	if _, err := s.authority.Logout(ctx, &authapi.LogoutRequest{}); err != nil {
		code, msg := httpStatus(err)
		if code != http.StatusUnauthorized {
			respond.Abort(c, code, msg)
			return
		}
	}

	respond.JSON(c, http.StatusOK, nil, "logged out")
}

func (s *Server) verifyAccessToken(c *gin.Context) {
	credential := c.GetHeader(common.TokenHeaderName)
	if credential == "" {
		credential = access.Credential(c)
	}

	res := s.verifier.Verify(c.Request.Context(), credential)
	switch {
	case res.Reason == verifier.ReasonAuthorityUnavailable:
		respond.Abort(c, http.StatusServiceUnavailable, access.ReasonMessage(res.Reason))
		return
	case !res.Valid:
		s.cookies.Clear(c)
		respond.Abort(c, http.StatusUnauthorized, access.ReasonMessage(res.Reason))
		return
	}

	respond.JSON(c, http.StatusOK, userData{Username: res.Identity}, "token is valid")
}

// getUsers lists everyone but the caller with their presence.
func (s *Server) getUsers(c *gin.Context) {
	self := access.Identity(c)

	resp, err := s.authority.ListUsers(c.Request.Context(), &authapi.ListUsersRequest{})
	if err != nil {
		code, msg := httpStatus(err)
		respond.Abort(c, code, msg)
		return
	}

	users := make([]userStatus, 0, len(resp.Usernames))
	for _, name := range resp.Usernames {
		if name == self {
			continue
		}
		users = append(users, userStatus{Username: name, IsOnline: s.registry.IsOnline(name)})
	}

	respond.JSON(c, http.StatusOK, users, "users fetched")
}
