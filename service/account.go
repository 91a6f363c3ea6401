package service

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sipscore/log"
	"sipscore/user"
)

const (
	minUsernameLength = 2
	minPasswordLength = 6
)

// API carries the handlers' shared services
type API struct {
	tokens *TokenService
}

func NewAPI(tokens *TokenService) *API {
	return &API{tokens: tokens}
}

// Register creates a new account and signs the caller straight in
func (a *API) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, MsgMissingFields)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if msg := validateRegisterInput(req); msg != "" {
		writeError(c, http.StatusBadRequest, msg)
		return
	}

	u, err := user.CreateUser(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if err == user.ErrDuplicate {
			writeError(c, http.StatusConflict, MsgEmailTaken)
			return
		}
		log.Logger().Printf("registering user %s failed: %s", req.Email, err)
		writeError(c, http.StatusInternalServerError, MsgInternalServerError)
		return
	}

	token, err := a.tokens.Issue(u.ID)
	if err != nil {
		log.Logger().Printf("issuing session token for %s failed: %s", u.Username, err)
		writeError(c, http.StatusInternalServerError, MsgInternalServerError)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"user":    profileOf(u),
		"token":   token,
	})
}

// Login verifies the credentials and issues a fresh session token
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, MsgMissingCredentials)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(c, http.StatusBadRequest, MsgMissingCredentials)
		return
	}

	u, err := user.Authenticate(c.Request.Context(), req.Username, req.Password)
	switch err {
	case nil:
	case user.ErrNotFound:
		writeError(c, http.StatusNotFound, MsgUserNotFound)
		return
	case user.ErrWrongPassword:
		writeError(c, http.StatusUnauthorized, MsgInvalidPassword)
		return
	default:
		log.Logger().Printf("login for %s failed: %s", req.Username, err)
		writeError(c, http.StatusInternalServerError, MsgInternalServerError)
		return
	}

	token, err := a.tokens.Issue(u.ID)
	if err != nil {
		log.Logger().Printf("issuing session token for %s failed: %s", u.Username, err)
		writeError(c, http.StatusInternalServerError, MsgInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sign-in successful",
		"user":    profileOf(u),
		"token":   token,
	})
}

// CurrentAccount returns the caller's own public profile
func (a *API) CurrentAccount(c *gin.Context) {
	c.JSON(http.StatusOK, profileOf(CurrentUser(c)))
}

// UpdateUsername renames the account, guarding the global username uniqueness
func (a *API) UpdateUsername(c *gin.Context) {
	var req updateUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, MsgUsernameTooShort)
		return
	}
	req.NewUsername = strings.TrimSpace(req.NewUsername)
	if len(req.NewUsername) < minUsernameLength {
		writeError(c, http.StatusBadRequest, MsgUsernameTooShort)
		return
	}

	u := CurrentUser(c)
	if err := u.UpdateUsername(c.Request.Context(), req.NewUsername); err != nil {
		if err == user.ErrUsernameTaken {
			writeError(c, http.StatusConflict, MsgUsernameTaken)
			return
		}
		log.Logger().Printf("username update for %s failed: %s", u.ID.Hex(), err)
		writeError(c, http.StatusInternalServerError, MsgInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Username updated successfully",
		"user":    profileOf(u),
	})
}

// UpdatePassword re-hashes and stores a new password after checking the current one
func (a *API) UpdatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, MsgMissingPasswords)
		return
	}
	if msg := validatePasswordChange(req); msg != "" {
		writeError(c, http.StatusBadRequest, msg)
		return
	}

	u := CurrentUser(c)
	if err := u.ChangePassword(c.Request.Context(), req.CurrentPassword, req.NewPassword); err != nil {
		if err == user.ErrWrongPassword {
			writeError(c, http.StatusUnauthorized, MsgInvalidPassword)
			return
		}
		log.Logger().Printf("password update for %s failed: %s", u.ID.Hex(), err)
		writeError(c, http.StatusInternalServerError, MsgInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// UpdateProfilePicture stores the provided encoded image unconditionally
func (a *API) UpdateProfilePicture(c *gin.Context) {
	var req updateProfilePictureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, MsgMissingPicture)
		return
	}
	if req.ProfilePicture == "" {
		writeError(c, http.StatusBadRequest, MsgMissingPicture)
		return
	}

	u := CurrentUser(c)
	if err := u.UpdateProfilePicture(c.Request.Context(), req.ProfilePicture); err != nil {
		log.Logger().Printf("profile picture update for %s failed: %s", u.ID.Hex(), err)
		writeError(c, http.StatusInternalServerError, MsgInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile picture updated successfully",
		"user":    profileOf(u),
	})
}

func validateRegisterInput(req registerRequest) string {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return MsgMissingFields
	}
	return ""
}

func validatePasswordChange(req updatePasswordRequest) string {
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return MsgMissingPasswords
	}
	if len(req.NewPassword) < minPasswordLength {
		return MsgPasswordTooShort
	}
	return ""
}
