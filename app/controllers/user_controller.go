package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

// UserController serves /api/users and /api/profile.
type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

func (h *UserController) Register(c *ctx.Context) {
	var in services.RegisterInput
	if !c.BindJSON(&in) {
		return
	}
	user, err := h.users.Register(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(map[string]any{"message": "User registered", "user": user})
}

func (h *UserController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !c.BindJSON(&in) {
		return
	}
	token, user, err := h.users.Login(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"token": token, "user": user})
}

// Me serves both GET /users/me and GET /profile.
func (h *UserController) Me(c *ctx.Context) {
	user, err := h.users.Get(c.Context(), c.UserID())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(user)
}

func (h *UserController) Index(c *ctx.Context) {
	users, err := h.users.List(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(users)
}

func (h *UserController) ToggleBlock(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	user, err := h.users.ToggleBlock(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"message": "User status updated", "user": user})
}

func (h *UserController) UpdateProfile(c *ctx.Context) {
	var in services.ProfileInput
	if !c.BindJSON(&in) {
		return
	}
	user, err := h.users.UpdateProfile(c.Context(), c.UserID(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"message": "Profile updated", "user": user})
}

func (h *UserController) ChangePassword(c *ctx.Context) {
	var in services.PasswordInput
	if !c.BindJSON(&in) {
		return
	}
	if err := h.users.ChangePassword(c.Context(), c.UserID(), in); err != nil {
		c.Fail(err)
		return
	}
	c.Message(http.StatusOK, "Password updated")
}
