package handlers

import (
	"errors"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	errs "shopmart/internal/errors"
	applog "shopmart/internal/log"
	"shopmart/internal/services"
	"shopmart/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	return render(c, "register", fiber.Map{})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	username := c.FormValue("username")
	email := c.FormValue("email")
	password := c.FormValue("password")
	address := c.FormValue("address")
	contact := c.FormValue("contact")

	fail := func(msg string) error {
		return c.Status(fiber.StatusBadRequest).Render("register", fiber.Map{
			"Err": msg, "Username": username, "Email": email, "Address": address, "Contact": contact,
		})
	}

	if username == "" || email == "" || password == "" || address == "" || contact == "" {
		return fail("All fields are required.")
	}
	if _, ok := validate.Name(username); !ok {
		return fail("Enter a valid username.")
	}
	if _, ok := validate.Email(email); !ok {
		return fail("Enter a valid email address.")
	}
	if !validate.Password(password) {
		return fail("Password should be at least 6 characters long.")
	}

	if _, err := h.Auth.Register(username, email, password, address, contact); err != nil {
		applog.Error(c, "auth.register.fail", err, map[string]any{"email": email})
		return fail("Could not create the account. The email may already be in use.")
	}

	applog.Audit(c, "auth.register", map[string]any{"email": email})
	return render(c, "login", fiber.Map{"Msg": "Registration successful! Please log in."})
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	email := c.FormValue("email")
	pass := c.FormValue("password")

	if _, ok := validate.Email(email); !ok || pass == "" {
		applog.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{"Err": "Invalid email or password"})
	}

	u, err := h.Auth.Login(sid, email, pass)
	if err != nil {
		msg := "Invalid email or password"
		if errors.Is(err, errs.ErrAccountInactive) {
			msg = "This account has been deactivated."
		}
		applog.Security(c, "auth.login.fail", map[string]any{"email": email})
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{"Err": msg})
	}

	applog.Audit(c, "auth.login.success", map[string]any{"email": email})
	if u.IsAdmin() {
		return c.Redirect("/admin")
	}
	return c.Redirect("/shopping")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	_ = h.Auth.Logout(sid)
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	applog.Audit(c, "auth.logout", nil)
	return c.Redirect("/login")
}

func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	return render(c, "profile", fiber.Map{})
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	u := currentUser(c)
	username := c.FormValue("username")
	email := c.FormValue("email")

	if _, ok := validate.Name(username); !ok {
		return c.Status(fiber.StatusBadRequest).Render("profile", fiber.Map{"Err": "Username and email are required."})
	}
	if _, ok := validate.Email(email); !ok {
		return c.Status(fiber.StatusBadRequest).Render("profile", fiber.Map{"Err": "Enter a valid email address."})
	}

	if err := h.Auth.UpdateProfile(u.ID, username, email, c.FormValue("contact"), c.FormValue("address")); err != nil {
		applog.Error(c, "profile.update.fail", err, nil)
		return c.Status(fiber.StatusBadRequest).Render("profile", fiber.Map{"Err": "Unable to update profile"})
	}
	applog.Audit(c, "profile.update", map[string]any{"user_id": u.ID})
	return c.Redirect("/user/profile")
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	u := currentUser(c)
	oldPass := c.FormValue("oldPassword")
	newPass := c.FormValue("newPassword")
	confirm := c.FormValue("confirmPassword")

	fail := func(msg string) error {
		return c.Status(fiber.StatusBadRequest).Render("profile", fiber.Map{"Err": msg})
	}
	if oldPass == "" || newPass == "" || confirm == "" {
		return fail("All password fields are required")
	}
	if !validate.Password(newPass) {
		return fail("New password must be at least 6 characters")
	}
	if newPass != confirm {
		return fail("New password and confirmation do not match")
	}

	if err := h.Auth.ChangePassword(u.ID, oldPass, newPass); err != nil {
		if errors.Is(err, errs.ErrBadCredentials) {
			return fail("Old password is incorrect")
		}
		applog.Error(c, "profile.password.fail", err, nil)
		return fail("Unable to change password")
	}
	applog.Audit(c, "profile.password", map[string]any{"user_id": u.ID})
	return c.Redirect("/user/profile")
}

// UpdateAddress is the checkout detour: save the shipping address, then
// return to the payment page keeping the item selection intact.
func (h *AuthHandler) UpdateAddress(c *fiber.Ctx) error {
	u := currentUser(c)
	if err := h.Auth.UpdateAddress(u.ID, c.FormValue("address")); err != nil {
		applog.Error(c, "profile.address.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not save the address"})
	}
	redirect := "/payment"
	if sel := c.FormValue("selectedItems"); sel != "" {
		redirect += "?selectedItems=" + url.QueryEscape(sel)
	}
	return c.Redirect(redirect)
}
