// Catalogue HTTP handlers.
//
// This file exposes the REST endpoints for the drink catalogue and
// member-defined custom drinks:
//   - GET    /brands              (all brands)
//   - GET    /brands/{id}/menus   (one brand's drinks)
//   - GET    /menus               (whole catalogue)
//   - GET    /menus/search        (fuzzy catalogue search)
//   - POST   /menus/custom        (register a custom drink)
//   - GET    /menus/custom        (list custom drinks)
//   - PUT    /menus/custom/{id}   (update a custom drink)
//   - DELETE /menus/custom/{id}   (remove a custom drink)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jeiu/caffeine-backend/internal/services"
	"github.com/jeiu/caffeine-backend/internal/utils"
)

// CreateCustomMenuRequest is the JSON payload for registering a custom drink.
type CreateCustomMenuRequest struct {
	Name       string  `json:"name" binding:"required,min=1,max=128" example:"Office Drip"`
	CaffeineMg float64 `json:"caffeine_mg" example:"95"`
}

// UpdateCustomMenuRequest is the JSON payload for changing a custom drink.
// Omitted fields stay unchanged.
type UpdateCustomMenuRequest struct {
	Name       *string  `json:"name,omitempty"`
	CaffeineMg *float64 `json:"caffeine_mg,omitempty"`
}

// ListBrands godoc
// @ID          listBrands
// @Summary     List catalogue brands
// @Tags        Catalogue
// @Produce     json
// @Success     200  {array} domain.Brand
// @Router      /brands [get]
func (h *Handlers) ListBrands(c *gin.Context) {
	brands, err := h.menuSvc.Brands(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, brands)
}

// ListBrandMenus godoc
// @ID          listBrandMenus
// @Summary     List one brand's drinks
// @Tags        Catalogue
// @Produce     json
// @Success     200  {array}  domain.Menu
// @Failure     404  {object} handlers.ErrorResponse "Brand not found"
// @Router      /brands/{id}/menus [get]
func (h *Handlers) ListBrandMenus(c *gin.Context) {
	menus, err := h.menuSvc.BrandMenus(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrBrandNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "brand not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, menus)
}

// ListMenus godoc
// @ID          listMenus
// @Summary     List the whole catalogue
// @Tags        Catalogue
// @Produce     json
// @Success     200  {array} domain.Menu
// @Router      /menus [get]
func (h *Handlers) ListMenus(c *gin.Context) {
	menus, err := h.menuSvc.Menus(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, menus)
}

// SearchMenus godoc
// @ID          searchMenus
// @Summary     Search the catalogue
// @Description Ranks drinks against the q parameter; k caps the result count (default 10).
// @Tags        Catalogue
// @Produce     json
// @Success     200  {array}  services.MenuHit
// @Failure     400  {object} handlers.ErrorResponse "Missing query"
// @Router      /menus/search [get]
func (h *Handlers) SearchMenus(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "q required")
		return
	}
	k := utils.QueryInt(c.Query("k"), 10, 1, 50)

	hits, err := h.menuSvc.Search(c.Request.Context(), q, k)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, hits)
}

// CreateCustomMenu godoc
// @ID          createCustomMenu
// @Summary     Register a custom drink
// @Tags        Catalogue
// @Accept      json
// @Produce     json
// @Success     201  {object} domain.CustomMenu
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     409  {object} handlers.ErrorResponse "Name already used"
// @Router      /menus/custom [post]
func (h *Handlers) CreateCustomMenu(c *gin.Context) {
	uid, okID := requireMember(c)
	if !okID {
		return
	}
	var req CreateCustomMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name required")
		return
	}

	cm, err := h.menuSvc.CreateCustom(c.Request.Context(), uid, req.Name, req.CaffeineMg)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateMenu):
			fail(c, http.StatusConflict, ErrCodeConflict, "custom drink already exists")
		case errors.Is(err, services.ErrInvalidIntake):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name and non-negative caffeine_mg required")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, cm)
}

// ListCustomMenus godoc
// @ID          listCustomMenus
// @Summary     List the member's custom drinks
// @Tags        Catalogue
// @Produce     json
// @Success     200  {array} domain.CustomMenu
// @Router      /menus/custom [get]
func (h *Handlers) ListCustomMenus(c *gin.Context) {
	uid, okID := requireMember(c)
	if !okID {
		return
	}
	list, err := h.menuSvc.ListCustom(c.Request.Context(), uid)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, list)
}

// UpdateCustomMenu godoc
// @ID          updateCustomMenu
// @Summary     Update a custom drink
// @Tags        Catalogue
// @Accept      json
// @Produce     json
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Failure     409  {object} handlers.ErrorResponse "Name already used"
// @Router      /menus/custom/{id} [put]
func (h *Handlers) UpdateCustomMenu(c *gin.Context) {
	uid, okID := requireMember(c)
	if !okID {
		return
	}
	var req UpdateCustomMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	err := h.menuSvc.UpdateCustom(c.Request.Context(), uid, c.Param("id"), req.Name, req.CaffeineMg)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMenuNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "custom drink not found")
		case errors.Is(err, services.ErrDuplicateMenu):
			fail(c, http.StatusConflict, ErrCodeConflict, "custom drink already exists")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	noContent(c)
}

// DeleteCustomMenu godoc
// @ID          deleteCustomMenu
// @Summary     Remove a custom drink
// @Tags        Catalogue
// @Produce     json
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /menus/custom/{id} [delete]
func (h *Handlers) DeleteCustomMenu(c *gin.Context) {
	uid, okID := requireMember(c)
	if !okID {
		return
	}
	if err := h.menuSvc.DeleteCustom(c.Request.Context(), uid, c.Param("id")); err != nil {
		if errors.Is(err, services.ErrMenuNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "custom drink not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}
